package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSubjectUsesPrefix(t *testing.T) {
	publisher := NewNATSPublisher(nil, "gema:gradebook.", zerolog.Nop())
	require.Equal(t, "gema.gradebook.grading.finalized", publisher.Subject(TypeFinalized))

	bare := NewNATSPublisher(nil, "", zerolog.Nop())
	require.Equal(t, TypeModeChanged, bare.Subject(TypeModeChanged))
}

func TestPublishWithoutConnectionIsNoop(t *testing.T) {
	publisher := NewNATSPublisher(nil, "gema", zerolog.Nop())
	require.NoError(t, publisher.Publish(context.Background(), Event{Type: TypeFinalized, CourseID: "c1"}))

	var missing *NATSPublisher
	require.NoError(t, missing.Publish(context.Background(), Event{Type: TypeFinalized}))
}

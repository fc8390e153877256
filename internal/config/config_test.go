package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 2*time.Minute, cfg.GradeCacheTTL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, EmptyCategoryExclude, cfg.EmptyCategoryPolicy)
	require.Empty(t, cfg.AdminAllowList)
}

func TestFromViperAllowListAndPolicy(t *testing.T) {
	v := viper.New()
	v.Set("jwt.secret", "secret")
	v.Set("admin.allow_list", " root@example.com, uid-1 ,,")
	v.Set("grading.empty_category_policy", "ZERO")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, []string{"root@example.com", "uid-1"}, cfg.AdminAllowList)
	require.Equal(t, EmptyCategoryZero, cfg.EmptyCategoryPolicy)
}

func TestFromViperRejectsInvalidValues(t *testing.T) {
	v := viper.New()
	_, err := fromViper(v)
	require.Error(t, err)

	v.Set("jwt.secret", "secret")
	v.Set("grades.cache_ttl", "soon")
	_, err = fromViper(v)
	require.Error(t, err)

	v.Set("grades.cache_ttl", "1m")
	v.Set("grading.empty_category_policy", "ignore")
	_, err = fromViper(v)
	require.Error(t, err)
}

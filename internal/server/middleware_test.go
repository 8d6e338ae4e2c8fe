package server

import (
	"testing"

	"github.com/alkime/dictator/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSecurityConfig(t *testing.T) {
	dev := securityConfig(&config.Config{Env: "development", HSTSMaxAge: 600, CSPMode: "strict"})
	assert.Zero(t, dev.STSSeconds)
	assert.False(t, dev.STSIncludeSubdomains)
	assert.Contains(t, dev.ContentSecurityPolicy, "default-src 'none'")

	prod := securityConfig(&config.Config{Env: config.EnvProduction, HSTSMaxAge: 600})
	assert.Equal(t, int64(600), prod.STSSeconds)
	assert.True(t, prod.STSIncludeSubdomains)
	assert.True(t, prod.FrameDeny)
}

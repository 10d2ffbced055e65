package email

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromAddress(t *testing.T) {
	config := GenerateTestConfig()
	config.SMTP.Identity = "curation-notify@163.com"
	Init(config)
	require.Equal(t, "curation-notify@163.com", fromAddress())

	config.SMTP.Identity = ""
	Init(config)
	require.Equal(t, config.SMTP.UserName, fromAddress())
}

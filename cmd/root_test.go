package cmd

import (
	"errors"
	"testing"

	"campaignd/internal/approval"
	"campaignd/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCodeGeneralError(t *testing.T) {
	assert.Equal(t, ExitCodeError, getExitCode(errors.New("boom")))
}

func TestGetExitCodeConfigInvalid(t *testing.T) {
	err := config.ValidationError{Field: "servers.crm.type", Message: "unsupported transport"}
	assert.Equal(t, ExitCodeConfigInvalid, getExitCode(err))
}

func TestGetExitCodeApprovalDenied(t *testing.T) {
	err := &approval.NotApprovedError{Server: "crm", Tool: "delete_contact"}
	assert.Equal(t, ExitCodeApprovalDenied, getExitCode(err))
}

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
}

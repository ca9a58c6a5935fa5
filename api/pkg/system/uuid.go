package system

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	SessionPrefix    = "ses_"
	WorkspacePrefix  = "ws_"
	CleanupJobPrefix = "clj_"
	RequestPrefix    = "req_"
)

func GenerateUUID() string {
	return uuid.New().String()
}

func newID() string {
	return strings.ToLower(ulid.Make().String())
}

func GenerateSessionID() string {
	return fmt.Sprintf("%s%s", SessionPrefix, newID())
}

func GenerateWorkspaceID() string {
	return fmt.Sprintf("%s%s", WorkspacePrefix, newID())
}

func GenerateCleanupJobID() string {
	return fmt.Sprintf("%s%s", CleanupJobPrefix, newID())
}

func GenerateRequestID() string {
	return fmt.Sprintf("%s%s", RequestPrefix, newID())
}

package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const ReferencePrefix = "NAPPS"

// NewReference: NAPPS-<yyyymmddhhmmss>-<12 hex dari UUIDv4>.
func NewReference(now time.Time) string {
	u := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ReferencePrefix + "-" + now.UTC().Format("20060102150405") + "-" + u[:12]
}

package campaign

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator derives entity ids. seq is the campaign's monotonic
// sequence, so the same command history always yields the same ids.
// Implemented by UUIDGenerator (production) and testutil.SequentialIDs.
type IDGenerator interface {
	NewID(campaignID, kind string, seq int64) string
}

// UUIDGenerator derives name-based UUIDs (version 5) inside a namespace
// owned by the campaign.
//
// Stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewID hashes kind and seq into the campaign namespace.
func (UUIDGenerator) NewID(campaignID, kind string, seq int64) string {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(campaignID))
	return uuid.NewSHA1(ns, []byte(kind+"/"+strconv.FormatInt(seq, 10))).String()
}

// NewCampaignID returns a time-sortable UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func NewCampaignID() string {
	return uuid.Must(uuid.NewV7()).String()
}

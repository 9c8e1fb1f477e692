package consent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	id "reciprocity/pkg/domain"
)

// receiptSnapshot is the wire form hashed into a receipt. The canonical
// encoding must stay byte-stable across reimplementations, so the fields are
// fixed here rather than derived from State's Go layout.
type receiptSnapshot struct {
	Expires    string   `json:"expires"`
	Extractive bool     `json:"extractive"`
	Scope      []string `json:"scope"`
}

// Fingerprint computes the receipt digest for a consent state:
// SHA-256 over "<userID>|<canonical JSON of the snapshot>", hex-encoded.
//
// The snapshot is serialized as RFC 8785 canonical JSON
// ({"expires":...,"extractive":...,"scope":[...]}), so an auditor holding a
// stored snapshot can re-derive the digest exactly. The digest is a content
// fingerprint, not a signature.
func Fingerprint(userID id.UserID, snapshot State) (string, error) {
	scope := snapshot.Scope
	if scope == nil {
		scope = []string{}
	}
	raw, err := json.Marshal(receiptSnapshot{
		Expires:    snapshot.Expires,
		Extractive: snapshot.Extractive,
		Scope:      scope,
	})
	if err != nil {
		return "", fmt.Errorf("marshal consent snapshot: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize consent snapshot: %w", err)
	}

	payload := make([]byte, 0, len(userID)+1+len(canonical))
	payload = append(payload, userID.String()...)
	payload = append(payload, '|')
	payload = append(payload, canonical...)

	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:]), nil
}

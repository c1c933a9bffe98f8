package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/invoiceai/extractor/internal/entity"
)

// DefaultRetention bounds how long a processed document remains matchable.
const DefaultRetention = 24 * time.Hour

// BusinessKeyField is the record field used as a document's unique identifier.
const BusinessKeyField = "invoice_number"

type entry struct {
	businessKey string
	contentHash string
	requesterID string
	result      *entity.ExtractionResult
	insertedAt  time.Time
}

// Detector suppresses duplicate submissions. Byte-identical documents match
// by content hash across identities; re-scanned documents with the same
// business key match only within the submitting identity. Entries expire
// lazily after the retention window.
type Detector struct {
	mu        sync.Mutex
	retention time.Duration
	now       func() time.Time

	entries   map[string]*entry              // business key -> latest entry
	hashIndex map[string]string              // content hash -> business key
	byClient  map[string]map[string]struct{} // requester -> business keys
}

// NewDetector builds a detector. A non-positive retention falls back to the
// 24-hour default.
func NewDetector(retention time.Duration) *Detector {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Detector{
		retention: retention,
		now:       time.Now,
		entries:   make(map[string]*entry),
		hashIndex: make(map[string]string),
		byClient:  make(map[string]map[string]struct{}),
	}
}

// ContentHash returns the hex SHA-256 digest of the raw document bytes.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CheckDuplicate reports whether this submission was seen before and, if so,
// returns the previously stored result. First-time submissions with a
// business key are stored; records without one are never cached or matched.
func (d *Detector) CheckDuplicate(identity string, content []byte, result *entity.ExtractionResult) (bool, *entity.ExtractionResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.evictExpired(now)

	hash := ContentHash(content)
	businessKey := extractBusinessKey(result)

	// Exact byte match: same bytes, same answer, regardless of identity.
	if key, ok := d.hashIndex[hash]; ok {
		if e, ok := d.entries[key]; ok {
			return true, e.result
		}
	}

	// Same business key re-submitted by the same requester (e.g. a fresh
	// scan of the same invoice).
	if businessKey != "" {
		if keys, ok := d.byClient[identity]; ok {
			if _, ok := keys[businessKey]; ok {
				if e, ok := d.entries[businessKey]; ok && e.requesterID == identity {
					return true, e.result
				}
			}
		}
	}

	if businessKey != "" {
		d.entries[businessKey] = &entry{
			businessKey: businessKey,
			contentHash: hash,
			requesterID: identity,
			result:      result,
			insertedAt:  now,
		}
		d.hashIndex[hash] = businessKey
		if d.byClient[identity] == nil {
			d.byClient[identity] = make(map[string]struct{})
		}
		d.byClient[identity][businessKey] = struct{}{}
	}

	return false, nil
}

// evictExpired removes entries older than the retention window together with
// their hash-index rows and identity key sets. Callers must hold mu.
func (d *Detector) evictExpired(now time.Time) {
	cutoff := now.Add(-d.retention)
	for key, e := range d.entries {
		if !e.insertedAt.Before(cutoff) {
			continue
		}
		delete(d.entries, key)
		if d.hashIndex[e.contentHash] == key {
			delete(d.hashIndex, e.contentHash)
		}
		if keys, ok := d.byClient[e.requesterID]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(d.byClient, e.requesterID)
			}
		}
	}
}

func extractBusinessKey(result *entity.ExtractionResult) string {
	if result == nil || result.ExtractedData == nil {
		return ""
	}
	return result.ExtractedData.String(BusinessKeyField)
}

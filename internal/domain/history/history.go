package history

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"glamai-server-go/internal/domain/analysis"
	platformerrors "glamai-server-go/internal/platform/errors"
	"glamai-server-go/internal/platform/logging"
	"glamai-server-go/internal/platform/storage"
)

// Store keeps completed analyses in the database so a signed-in user
// can revisit them. It satisfies the analyzer's Recorder.
type Store struct {
	db     *gorm.DB
	logger *logging.Logger
}

// Entry is one stored analysis, with the result decoded back into
// its kind-specific shape.
type Entry struct {
	RequestID string          `json:"requestId"`
	Kind      analysis.Kind   `json:"kind"`
	Width     int             `json:"width,omitempty"`
	Height    int             `json:"height,omitempty"`
	Result    analysis.Result `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewStore(db *gorm.DB, logger *logging.Logger) (*Store, error) {
	if db == nil {
		return nil, platformerrors.New(platformerrors.KindStorage, "history.new", "database handle is required")
	}
	return &Store{db: db, logger: logger}, nil
}

// Record persists one completed analysis.
func (s *Store) Record(ctx context.Context, record analysis.Record) error {
	encoded, err := sonic.Marshal(record.Result)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "history.record", "encode result", err)
	}

	row := &storage.AnalysisRecord{
		RequestID:  record.RequestID,
		UserID:     record.UserID,
		Kind:       string(record.Kind),
		Width:      record.Width,
		Height:     record.Height,
		DurationMS: record.Duration.Milliseconds(),
		Result:     datatypes.JSON(encoded),
		CreatedAt:  time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "history.record", "insert record", err)
	}
	return nil
}

// ListByUser returns the user's analyses, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []storage.AnalysisRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "history.list", "query records", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := decodeEntry(row)
		if err != nil {
			// Rows written by an older schema are skipped, not fatal.
			s.logger.WarnTag("HISTORY", "skipping record %s: %v", row.RequestID, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(row storage.AnalysisRecord) (Entry, error) {
	kind, err := analysis.ParseKind(row.Kind)
	if err != nil {
		return Entry{}, err
	}

	result, err := decodeResult(kind, row.Result)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		RequestID: row.RequestID,
		Kind:      kind,
		Width:     row.Width,
		Height:    row.Height,
		Result:    result,
		CreatedAt: row.CreatedAt,
	}, nil
}

func decodeResult(kind analysis.Kind, raw []byte) (analysis.Result, error) {
	switch kind {
	case analysis.KindFace:
		var result analysis.FaceResult
		if err := sonic.Unmarshal(raw, &result); err != nil {
			return nil, err
		}
		return result, nil
	case analysis.KindBody:
		var result analysis.BodyResult
		if err := sonic.Unmarshal(raw, &result); err != nil {
			return nil, err
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unknown analysis kind: %s", kind)
	}
}

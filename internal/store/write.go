package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/bamboo/internal/bam"
	"github.com/roach88/bamboo/internal/dump"
)

// IndexFile records f under path in a single transaction and returns the
// new file id. Indexing the same path again creates a new entry.
func (s *Store) IndexFile(ctx context.Context, f *bam.File, path string) (string, error) {
	summary := dump.Snapshot(f)
	digest, err := summary.Digest()
	if err != nil {
		return "", fmt.Errorf("index file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("index file: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM files`).Scan(&seq); err != nil {
		return "", fmt.Errorf("index file: next seq: %w", err)
	}

	id := s.ids.Generate()
	h := f.Header()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO files
		(id, seq, path, major, minor, endian, stdfloat_double, object_count, summary_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		seq,
		path,
		h.Version.Major,
		h.Version.Minor,
		uint8(h.Endian),
		h.StdFloatDouble,
		len(summary.Objects),
		digest,
	)
	if err != nil {
		return "", fmt.Errorf("index file: insert file: %w", err)
	}

	if err := insertHandles(ctx, tx, id, summary.Handles); err != nil {
		return "", err
	}
	if err := insertObjects(ctx, tx, id, summary.Objects); err != nil {
		return "", err
	}
	if err := insertFileData(ctx, tx, id, f.FileData(), summary.FileData); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("index file: commit: %w", err)
	}
	return id, nil
}

func insertHandles(ctx context.Context, tx *sql.Tx, fileID string, handles []dump.HandleEntry) error {
	// Parents may be registered after their children, so every handle row
	// goes in before any parent link.
	for i, h := range handles {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO handles (file_id, id, position, name)
			VALUES (?, ?, ?, ?)
		`, fileID, uint16(h.ID), i, h.Name)
		if err != nil {
			return fmt.Errorf("index file: insert handle %d: %w", h.ID, err)
		}
	}
	for _, h := range handles {
		for pos, p := range h.Parents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO handle_parents (file_id, handle_id, position, parent_id)
				VALUES (?, ?, ?, ?)
			`, fileID, uint16(h.ID), pos, uint16(p))
			if err != nil {
				return fmt.Errorf("index file: insert parent of handle %d: %w", h.ID, err)
			}
		}
	}
	return nil
}

func insertObjects(ctx context.Context, tx *sql.Tx, fileID string, objects []dump.ObjectEntry) error {
	for i, o := range objects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO objects
			(file_id, id, position, handle_id, size, interpreted, extra_bytes, digest)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, fileID, o.ID, i, uint16(o.HandleID), o.Size, o.Interpreted, o.ExtraBytes, o.Digest)
		if err != nil {
			return fmt.Errorf("index file: insert object %d: %w", o.ID, err)
		}
	}
	return nil
}

func insertFileData(ctx context.Context, tx *sql.Tx, fileID string, blobs [][]byte, entries []dump.BlobEntry) error {
	for i, data := range blobs {
		if data == nil {
			data = []byte{}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO file_data (file_id, position, size, digest, data)
			VALUES (?, ?, ?, ?, ?)
		`, fileID, i, entries[i].Size, entries[i].Digest, data)
		if err != nil {
			return fmt.Errorf("index file: insert file data %d: %w", i, err)
		}
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/bamboo/internal/bam"
	"github.com/roach88/bamboo/internal/handle"
)

// FileInfo is one indexed container.
type FileInfo struct {
	ID             string
	Seq            int64
	Path           string
	Version        bam.Version
	Endian         bam.Endian
	StdFloatDouble bool
	ObjectCount    int
	SummaryDigest  string
}

// ObjectInfo is one indexed object record.
type ObjectInfo struct {
	ID          uint32
	HandleID    handle.ID
	Type        string
	Size        int
	Interpreted bool
	ExtraBytes  int
	Digest      string
}

// Files returns every indexed container ordered by seq.
//
// Returns an empty slice (not nil) if nothing has been indexed.
func (s *Store) Files(ctx context.Context) ([]FileInfo, error) {
	return s.queryFiles(ctx, `
		SELECT id, seq, path, major, minor, endian, stdfloat_double, object_count, summary_digest
		FROM files
		ORDER BY seq ASC
	`)
}

// FilesByDigest returns the indexed containers whose summary digest is
// digest, ordered by seq. Re-indexing an unchanged container produces a
// second row with the same digest.
func (s *Store) FilesByDigest(ctx context.Context, digest string) ([]FileInfo, error) {
	return s.queryFiles(ctx, `
		SELECT id, seq, path, major, minor, endian, stdfloat_double, object_count, summary_digest
		FROM files
		WHERE summary_digest = ?
		ORDER BY seq ASC
	`, digest)
}

func (s *Store) queryFiles(ctx context.Context, query string, args ...any) ([]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files := []FileInfo{}
	for rows.Next() {
		var fi FileInfo
		var endian uint8
		if err := rows.Scan(
			&fi.ID, &fi.Seq, &fi.Path,
			&fi.Version.Major, &fi.Version.Minor,
			&endian, &fi.StdFloatDouble, &fi.ObjectCount, &fi.SummaryDigest,
		); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		fi.Endian = bam.Endian(endian)
		files = append(files, fi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// File returns the indexed container with the given id.
func (s *Store) File(ctx context.Context, fileID string) (FileInfo, error) {
	var fi FileInfo
	var endian uint8
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, path, major, minor, endian, stdfloat_double, object_count, summary_digest
		FROM files
		WHERE id = ?
	`, fileID).Scan(
		&fi.ID, &fi.Seq, &fi.Path,
		&fi.Version.Major, &fi.Version.Minor,
		&endian, &fi.StdFloatDouble, &fi.ObjectCount, &fi.SummaryDigest,
	)
	if err == sql.ErrNoRows {
		return FileInfo{}, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("query file %s: %w", fileID, err)
	}
	fi.Endian = bam.Endian(endian)
	return fi, nil
}

// Handles returns the type handles of a container in registration order.
func (s *Store) Handles(ctx context.Context, fileID string) ([]handle.Handle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.name, p.parent_id
		FROM handles h
		LEFT JOIN handle_parents p ON p.file_id = h.file_id AND p.handle_id = h.id
		WHERE h.file_id = ?
		ORDER BY h.position ASC, p.position ASC
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query handles: %w", err)
	}
	defer rows.Close()

	handles := []handle.Handle{}
	for rows.Next() {
		var id uint16
		var name string
		var parent sql.NullInt64
		if err := rows.Scan(&id, &name, &parent); err != nil {
			return nil, fmt.Errorf("scan handle: %w", err)
		}
		n := len(handles)
		if n == 0 || handles[n-1].ID != handle.ID(id) {
			handles = append(handles, handle.Handle{ID: handle.ID(id), Name: name})
			n++
		}
		if parent.Valid {
			handles[n-1].Parents = append(handles[n-1].Parents, handle.ID(parent.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate handles: %w", err)
	}
	return handles, nil
}

// Objects returns the object records of a container in stream order.
func (s *Store) Objects(ctx context.Context, fileID string) ([]ObjectInfo, error) {
	return s.queryObjects(ctx, `
		SELECT o.id, o.handle_id, h.name, o.size, o.interpreted, o.extra_bytes, o.digest
		FROM objects o
		JOIN handles h ON h.file_id = o.file_id AND h.id = o.handle_id
		WHERE o.file_id = ?
		ORDER BY o.position ASC
	`, fileID)
}

// ObjectsOfType returns the records whose type is name or derives from it,
// in stream order. Unlike bam.File.ObjectsOfType it includes records that
// had no interpreter; check Interpreted to tell them apart.
func (s *Store) ObjectsOfType(ctx context.Context, fileID, name string) ([]ObjectInfo, error) {
	return s.queryObjects(ctx, `
		WITH RECURSIVE related(id) AS (
			SELECT id FROM handles WHERE file_id = ? AND name = ?
			UNION
			SELECT p.handle_id
			FROM handle_parents p
			JOIN related r ON p.parent_id = r.id
			WHERE p.file_id = ?
		)
		SELECT o.id, o.handle_id, h.name, o.size, o.interpreted, o.extra_bytes, o.digest
		FROM objects o
		JOIN handles h ON h.file_id = o.file_id AND h.id = o.handle_id
		WHERE o.file_id = ? AND o.handle_id IN (SELECT id FROM related)
		ORDER BY o.position ASC
	`, fileID, name, fileID, fileID)
}

// FileData returns the file data blocks of a container in stream order.
func (s *Store) FileData(ctx context.Context, fileID string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM file_data WHERE file_id = ? ORDER BY position ASC
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query file data: %w", err)
	}
	defer rows.Close()

	blobs := [][]byte{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan file data: %w", err)
		}
		blobs = append(blobs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file data: %w", err)
	}
	return blobs, nil
}

func (s *Store) queryObjects(ctx context.Context, query string, args ...any) ([]ObjectInfo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	objects := []ObjectInfo{}
	for rows.Next() {
		var o ObjectInfo
		var hid uint16
		if err := rows.Scan(&o.ID, &hid, &o.Type, &o.Size, &o.Interpreted, &o.ExtraBytes, &o.Digest); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		o.HandleID = handle.ID(hid)
		objects = append(objects, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	return objects, nil
}

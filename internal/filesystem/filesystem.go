// Package filesystem reads request payloads from disk and writes
// content-hashed version snapshots.
package filesystem

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/choplin/medialedger/internal/media"
)

// Format is the encoding of a payload file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat picks the payload format from the file extension. Anything
// that is not .json is read as YAML, which also accepts JSON documents.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ReadPayload returns the bytes at path; "-" reads from stdin.
func ReadPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	//nolint:gosec // G304: path is supplied by the operator
	return os.ReadFile(path)
}

// Decode unmarshals data into v. JSON payloads reject unknown fields so a
// misspelled attribute does not silently turn into an inherited one.
func Decode(data []byte, format Format, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode json payload: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode yaml payload: %w", err)
		}
	}
	return nil
}

// LoadFile reads and decodes the payload at path into v.
func LoadFile(path string, stdin io.Reader, v any) error {
	data, err := ReadPayload(path, stdin)
	if err != nil {
		return err
	}
	return Decode(data, DetectFormat(path), v)
}

// snapshot is the on-disk layout of an exported version.
type snapshot struct {
	ID          int64                  `yaml:"id"`
	MdmID       int64                  `yaml:"mdmId"`
	Version     int64                  `yaml:"version"`
	Attributes  media.Attributes       `yaml:",inline"`
	CreatedAt   string                 `yaml:"createdAt"`
	DeletedAt   string                 `yaml:"deletedAt,omitempty"`
	Resolutions []media.ResolutionSpec `yaml:"resolutions"`
}

// SnapshotPath returns where SaveSnapshot stores version of mdmID under dir.
func SnapshotPath(dir string, mdmID, version int64) string {
	name := "v" + strconv.FormatInt(version, 10) + ".yaml"
	return filepath.Join(dir, strconv.FormatInt(mdmID, 10), name)
}

// SaveSnapshot writes m as YAML below dir and returns the file path and the
// SHA-256 of its content. Re-exporting a version only changes the file when
// the version has been soft-deleted since.
func SaveSnapshot(dir string, m media.Media) (string, string, error) {
	s := snapshot{
		ID:          m.ID,
		MdmID:       m.MdmID,
		Version:     m.Version,
		Attributes:  m.Attributes,
		CreatedAt:   m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Resolutions: make([]media.ResolutionSpec, 0, len(m.Resolutions)),
	}
	if m.DeletedAt != nil {
		s.DeletedAt = m.DeletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	for _, r := range m.Resolutions {
		s.Resolutions = append(s.Resolutions, r.Spec())
	}

	content, err := yaml.Marshal(s)
	if err != nil {
		return "", "", err
	}

	path := SnapshotPath(dir, m.MdmID, m.Version)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", "", err
	}

	return path, calculateHash(content), nil
}

// VerifyFile ensures the file exists and its SHA-256 hash matches the expected hash.
func VerifyFile(path, expectedHash string) (bool, error) {
	//nolint:gosec // G304: path comes from SaveSnapshot
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return calculateHash(content) == expectedHash, nil
}

func calculateHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

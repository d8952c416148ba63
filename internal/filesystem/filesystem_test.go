package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/choplin/medialedger/internal/media"
)

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"payload.json": FormatJSON,
		"PAYLOAD.JSON": FormatJSON,
		"payload.yaml": FormatYAML,
		"payload.yml":  FormatYAML,
		"-":            FormatYAML,
	}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Fatalf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "create.yaml")
	payload := `mdmId: 42
name: Shibuya Vision
state: operating
totalMonitorCount: 4
resolutions:
  - {width: 1920, height: 1080, ppi: 96}
`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	var in media.CreateInput
	if err := LoadFile(path, nil, &in); err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if in.MdmID != 42 || in.Name != "Shibuya Vision" || in.State != media.StateOperating {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.TotalMonitorCount != 4 {
		t.Fatalf("expected total monitor count 4, got %d", in.TotalMonitorCount)
	}
	if len(in.Resolutions) != 1 || in.Resolutions[0] != (media.ResolutionSpec{Width: 1920, Height: 1080, PPI: 96}) {
		t.Fatalf("unexpected resolutions: %+v", in.Resolutions)
	}
}

func TestLoadFileJSONFromStdin(t *testing.T) {
	var in media.UpdateInput
	stdin := strings.NewReader(`{"mdmId": 7, "name": "renamed"}`)
	if err := Decode(mustRead(t, stdin), FormatJSON, &in); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if in.MdmID == nil || *in.MdmID != 7 {
		t.Fatalf("expected mdm id 7, got %v", in.MdmID)
	}
	if in.Name == nil || *in.Name != "renamed" {
		t.Fatalf("expected name override, got %v", in.Name)
	}
	if in.Owner != nil || in.Resolutions != nil {
		t.Fatalf("expected unset fields to stay nil: %+v", in)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var in media.UpdateInput
	if err := Decode([]byte(`{"mdmId": 1, "nmae": "typo"}`), FormatJSON, &in); err == nil {
		t.Fatalf("expected unknown json field to fail")
	}
	if err := Decode([]byte("mdmId: 1\nnmae: typo\n"), FormatYAML, &in); err == nil {
		t.Fatalf("expected unknown yaml field to fail")
	}
}

func TestSaveSnapshotAndVerify(t *testing.T) {
	dir := t.TempDir()
	m := media.Media{
		ID:      3,
		MdmID:   42,
		Version: 2,
		Attributes: media.Attributes{
			Name:  "Shibuya Vision",
			State: media.StateOperating,
		},
		CreatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Resolutions: []media.Resolution{{ID: 1, Width: 1920, Height: 1080, PPI: 96}},
	}

	path, hash, err := SaveSnapshot(dir, m)
	if err != nil {
		t.Fatalf("SaveSnapshot returned error: %v", err)
	}
	if path != filepath.Join(dir, "42", "v2.yaml") {
		t.Fatalf("unexpected snapshot path %s", path)
	}

	ok, err := VerifyFile(path, hash)
	if err != nil || !ok {
		t.Fatalf("expected snapshot to verify, ok=%v err=%v", ok, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !strings.Contains(string(content), "name: Shibuya Vision") {
		t.Fatalf("expected inlined attributes, got:\n%s", content)
	}
	if strings.Contains(string(content), "deletedAt") {
		t.Fatalf("active version should not carry deletedAt:\n%s", content)
	}

	if err := os.WriteFile(path, []byte("tampered"), 0o600); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	ok, err = VerifyFile(path, hash)
	if err != nil || ok {
		t.Fatalf("expected tampered snapshot to fail verification, ok=%v err=%v", ok, err)
	}

	ok, err = VerifyFile(filepath.Join(dir, "missing.yaml"), hash)
	if err != nil || ok {
		t.Fatalf("expected missing file to fail verification, ok=%v err=%v", ok, err)
	}
}

func mustRead(t *testing.T, r *strings.Reader) []byte {
	t.Helper()
	data, err := ReadPayload("-", r)
	if err != nil {
		t.Fatalf("ReadPayload returned error: %v", err)
	}
	return data
}

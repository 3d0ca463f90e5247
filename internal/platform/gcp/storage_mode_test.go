package gcp

import "testing"

func TestResolveObjectStorageConfigDefaultsToGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("ARTIFACT_GCS_BUCKET", "pylearn-videos")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
}

func TestResolveObjectStorageConfigEmulatorFallback(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	t.Setenv("ARTIFACT_GCS_BUCKET", "pylearn-videos")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if !cfg.IsEmulatorMode() {
		t.Fatalf("mode: want emulator got=%q", cfg.Mode)
	}
}

func TestResolveObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name, mode, host, bucket string
	}{
		{"invalid mode", "s3", "", "b"},
		{"missing bucket", "gcs", "", ""},
		{"emulator without host", "gcs_emulator", "", "b"},
		{"emulator bad host", "gcs_emulator", "fake-gcs:4443", "b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
			t.Setenv("STORAGE_EMULATOR_HOST", tc.host)
			t.Setenv("ARTIFACT_GCS_BUCKET", tc.bucket)
			if _, err := ResolveObjectStorageConfigFromEnv(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("videos/abc/final.mp4"); got != "video/mp4" {
		t.Fatalf("mp4: %q", got)
	}
	if got := contentTypeForKey("charts/x.PNG"); got != "image/png" {
		t.Fatalf("png: %q", got)
	}
	if got := contentTypeForKey("notes.txt"); got != "" {
		t.Fatalf("unknown: %q", got)
	}
}

func TestResolveObjectStorageConfigCredentials(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "gcs")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("ARTIFACT_GCS_BUCKET", "pylearn-videos")
	t.Setenv("ARTIFACT_GCS_CREDENTIALS", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Credentials != "/secrets/sa.json" {
		t.Fatalf("credentials fallback: %q", cfg.Credentials)
	}
	if n := len(cfg.clientOptions()); n != 2 {
		t.Fatalf("expected scope + credentials options, got %d", n)
	}

	t.Setenv("ARTIFACT_GCS_CREDENTIALS", `{"type":"service_account"}`)
	cfg, _ = ResolveObjectStorageConfigFromEnv()
	if cfg.Credentials != `{"type":"service_account"}` {
		t.Fatalf("explicit credentials should win: %q", cfg.Credentials)
	}
	if n := len((ObjectStorageConfig{}).clientOptions()); n != 1 {
		t.Fatalf("default credentials should add only the scope, got %d", n)
	}
}

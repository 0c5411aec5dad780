package fdw_test

import (
	"testing"

	"github.com/wippyai/pg-runtime/fdw"
)

type testOptions struct {
	Path    string `json:"path" validate:"required"`
	Bucket  string `json:"bucket" validate:"required,alphanum"`
	Verbose string `json:"verbose" validate:"omitempty,oneof=on off"`
}

func TestDecodeOptions(t *testing.T) {
	cases := []struct {
		name    string
		opts    fdw.Options
		wantErr bool
	}{
		{
			name: "valid",
			opts: fdw.Options{"path": "/tmp/rows.db", "bucket": "rows"},
		},
		{
			name: "valid with optional",
			opts: fdw.Options{"path": "/tmp/rows.db", "bucket": "rows", "verbose": "on"},
		},
		{
			name:    "missing required",
			opts:    fdw.Options{"bucket": "rows"},
			wantErr: true,
		},
		{
			name:    "constraint violation",
			opts:    fdw.Options{"path": "/tmp/rows.db", "bucket": "rows", "verbose": "loud"},
			wantErr: true,
		},
		{
			name:    "non alphanumeric bucket",
			opts:    fdw.Options{"path": "/tmp/rows.db", "bucket": "my bucket"},
			wantErr: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out testOptions
			err := fdw.DecodeOptions(c.opts, &out)
			if c.wantErr {
				if err == nil {
					t.Fatal("decoded invalid options without error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeOptions: %v", err)
			}
			if out.Path != c.opts["path"] || out.Bucket != c.opts["bucket"] {
				t.Fatalf("decoded %+v from %v", out, c.opts)
			}
		})
	}
}

func TestDecodeOptionsIgnoresUnknownKeys(t *testing.T) {
	var out testOptions
	err := fdw.DecodeOptions(fdw.Options{
		"path":   "/tmp/rows.db",
		"bucket": "rows",
		"extra":  "ignored",
	}, &out)
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}
}

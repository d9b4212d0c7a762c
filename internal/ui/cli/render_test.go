package cli

import (
	"bytes"
	"strings"
	"testing"

	coreapp "propinfo/internal/core/app"
)

func boolPtr(v bool) *bool { return &v }

func TestRenderReport(t *testing.T) {
	report := &coreapp.ClassReport{
		Class: "Pet",
		Properties: []coreapp.PropertyReport{
			{
				Name:             "name",
				TypeText:         "string",
				ShortDescription: "Pet name.",
				LongDescription:  "Shown on the adoption page.",
				Readable:         boolPtr(true),
				Writable:         boolPtr(true),
				Initializable:    boolPtr(true),
			},
			{Name: "id", TypeText: "int", Readable: boolPtr(true), Writable: boolPtr(false)},
			{Name: "extra"},
		},
	}

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()

	for _, want := range []string{"Pet", "name", "string", "rwi", "Pet name.", "Shown on the adoption page.", "r-?", "???"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, &coreapp.ClassReport{Class: "Empty"})
	if !strings.Contains(buf.String(), "(no properties)") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestAccessFlags(t *testing.T) {
	tests := []struct {
		name string
		p    coreapp.PropertyReport
		want string
	}{
		{name: "unknown", p: coreapp.PropertyReport{}, want: "???"},
		{name: "read only", p: coreapp.PropertyReport{Readable: boolPtr(true), Writable: boolPtr(false), Initializable: boolPtr(false)}, want: "r--"},
		{name: "write only", p: coreapp.PropertyReport{Readable: boolPtr(false), Writable: boolPtr(true)}, want: "-w?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := accessFlags(tt.p); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestPromptConfirm(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
		{"y", true},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		p := &Prompt{In: strings.NewReader(tc.in), Out: &out}
		got, err := p.Confirm("Delete artifacts?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Confirm(%q)=%v, want %v", tc.in, got, tc.want)
		}
		if !strings.Contains(out.String(), "Delete artifacts?") {
			t.Errorf("question not written: %q", out.String())
		}
	}
}

func TestAlways(t *testing.T) {
	ok, err := Always{}.Confirm("anything")
	if !ok || err != nil {
		t.Fatalf("Always should confirm, got %v %v", ok, err)
	}
}

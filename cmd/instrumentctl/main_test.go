package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		return 1
	}
	return 0
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestList(t *testing.T) {
	out, err := run(t, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"GAD7", "PCL5", "PHQ9", "0-27", "0-80"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.yaml", `
name: Two item
type: GAD7
scale:
  - {text: no, value: 0}
  - {text: yes, value: 1}
questions: [a, b]
ranges:
  - {min: 0, max: 0, severity: MINIMAL}
  - {min: 1, max: 2, severity: MILD}
`)
	bad := writeFile(t, "bad.yaml", `
name: Two item
type: GAD7
scale:
  - {text: no, value: 0}
  - {text: yes, value: 1}
questions: [a, b]
ranges:
  - {min: 0, max: 1, severity: MINIMAL}
  - {min: 1, max: 1, severity: UNKNOWN}
`)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
	}{
		{"built-ins", []string{"check"}, 0, []string{"ok   PHQ9", "ok   GAD7", "ok   PCL5"}},
		{"good file", []string{"check", good}, 0, []string{"ok   " + good, "score 0-2"}},
		{"bad file", []string{"check", good, bad}, 1, []string{"FAIL " + bad, `invalid severity "UNKNOWN"`}},
		{"missing file", []string{"check", filepath.Join(t.TempDir(), "nope.yaml")}, 1, []string{"FAIL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if got := exitCode(err); got != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err %v)\n%s", got, tt.wantCode, err, out)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:    "phq9 mild",
			stdin:   `{"1":1,"2":1,"3":1,"4":1,"5":1,"6":0,"7":0,"8":0,"9":0}`,
			args:    []string{"score", "--instrument", "PHQ9"},
			wantOut: `"severity": "MILD"`,
		},
		{
			name:     "missing answer",
			stdin:    `{"1":1}`,
			args:     []string{"score", "--instrument", "GAD7"},
			wantCode: 3,
			wantOut:  "question 2: not answered",
		},
		{
			name:     "unknown instrument",
			stdin:    `{}`,
			args:     []string{"score", "--instrument", "BDI"},
			wantCode: 2,
		},
		{
			name:     "no instrument",
			args:     []string{"score"},
			wantCode: 2,
		},
		{
			name:     "bad json",
			stdin:    `{"1":`,
			args:     []string{"score", "--instrument", "PHQ9"},
			wantCode: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			if got := exitCode(err); got != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err %v)\n%s", got, tt.wantCode, err, out)
			}
			if tt.wantOut != "" && !strings.Contains(out, tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, out)
			}
		})
	}
}

func TestScoreAnswersFile(t *testing.T) {
	answers := writeFile(t, "answers.json", `{"1":3,"2":3,"3":3,"4":3,"5":3,"6":3,"7":3}`)
	out, err := run(t, "", "score", "--instrument", "GAD7", "--answers", answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(out, `"totalScore": 21`) || !strings.Contains(out, `"severity": "SEVERE"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

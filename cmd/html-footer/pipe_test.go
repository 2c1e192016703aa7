package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zarath/html-mail-footer/internal/footer"
)

func TestRunPipe_Passthrough(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"Subject: Plain",
		"Content-Type: text/plain",
		"",
		"No signature here.",
		"",
	}, "\r\n")

	var out bytes.Buffer
	rw := &footer.Rewriter{AddHeader: true}
	if err := runPipe(rw, strings.NewReader(raw), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.String() != raw {
		t.Errorf("ineligible message must pass through unchanged:\ngot:\n%s\nwant:\n%s", out.String(), raw)
	}
}

func TestRunPipe_RewritesEligibleMessage(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"Subject: Signed",
		"Content-Type: text/plain",
		"",
		"Hello",
		"-- ",
		"Best,",
		"<html>",
		"<b>Firm</b>",
		"</html>",
		"",
	}, "\r\n")

	var out bytes.Buffer
	rw := &footer.Rewriter{AddHeader: true}
	if err := runPipe(rw, strings.NewReader(raw), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "multipart/alternative") {
		t.Errorf("output not converted to multipart/alternative:\n%s", got)
	}
	if !strings.Contains(got, "<b>Firm</b>") {
		t.Errorf("output missing HTML signature content:\n%s", got)
	}
}

func TestRunPipe_MalformedPassesThrough(t *testing.T) {
	t.Parallel()

	// Not parseable as a message at all; must still come out byte for byte.
	raw := "garbage without headers"

	var out bytes.Buffer
	rw := &footer.Rewriter{AddHeader: true}
	if err := runPipe(rw, strings.NewReader(raw), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != raw {
		t.Errorf("malformed message must pass through unchanged, got:\n%s", out.String())
	}
}

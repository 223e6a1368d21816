package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"

	"yashubustudio/pyroclassifier/classifier"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr []error
	}{
		{name: "complete", args: []string{"-model", "m.onnx", "-dir", "imgs", "-csv", "out.csv", "-history"}},
		{name: "no model", args: []string{"-dir", "imgs"}, wantErr: []error{classifier.ErrNoModel}},
		{name: "no dir", args: []string{"-model", "m.onnx"}, wantErr: []error{classifier.ErrNoDirectory}},
		{name: "blank", args: []string{"-model", "  ", "-dir", ""}, wantErr: []error{classifier.ErrNoModel, classifier.ErrNoDirectory}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			opts, err := parseFlags(tt.args, &out)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("parseFlags() error = %v", err)
				}
				if opts.modelPath != "m.onnx" || opts.dirPath != "imgs" || opts.csvPath != "out.csv" || !opts.history {
					t.Errorf("opts = %+v", opts)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error = %v, want %v", err, want)
				}
			}
			if !strings.Contains(out.String(), classifier.PreconditionMessage) {
				t.Errorf("output %q missing precondition message", out.String())
			}
		})
	}
}

func TestParseFlags_Help(t *testing.T) {
	for _, arg := range []string{"-h", "-help"} {
		var out bytes.Buffer
		_, err := parseFlags([]string{arg}, &out)
		if !errors.Is(err, flag.ErrHelp) {
			t.Errorf("parseFlags(%s) error = %v, want flag.ErrHelp", arg, err)
		}
		if !strings.Contains(out.String(), "Usage:") {
			t.Errorf("parseFlags(%s) output %q missing usage", arg, out.String())
		}
	}
}

func TestHistoryPath(t *testing.T) {
	if got := historyPath(classifier.Config{}); got != defaultHistoryDB {
		t.Errorf("historyPath() = %q, want %q", got, defaultHistoryDB)
	}
	if got := historyPath(classifier.Config{HistoryDB: "runs.db"}); got != "runs.db" {
		t.Errorf("historyPath() = %q, want runs.db", got)
	}
}

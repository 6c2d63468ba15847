package main

import (
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"trelloimport": main,
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
	})
}

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "trelloimport" {
		t.Fatalf("expected root command name trelloimport, got %q", rootCmd.Use)
	}
}

// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

// Command bundle-changes reads a deployment bundle from stdin or a
// path argument, validates it, and prints the change-set required to
// deploy it as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/juju/bundleplan"
	"github.com/juju/bundleplan/bundle"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if len(flag.Args()) > 1 {
		fmt.Fprintln(os.Stderr, "need a bundle path as first and only argument")
		os.Exit(2)
	}
	r := os.Stdin
	if path := flag.Arg(0); path != "" {
		var err error
		if r, err = os.Open(path); err != nil {
			fmt.Fprintf(os.Stderr, "invalid bundle path: %s\n", err)
			os.Exit(2)
		}
		defer r.Close()
	}
	if err := process(r, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "unable to process bundle: %s\n", err)
		os.Exit(1)
	}
}

// usage outputs instructions on how to use this command.
func usage() {
	fmt.Fprintln(os.Stderr, "usage: bundle-changes [bundle]")
	fmt.Fprintln(os.Stderr, "bundle can also be provided on stdin")
	flag.PrintDefaults()
	os.Exit(2)
}

// process reads and decodes the bundle data from r, validates it, and
// prints the resulting change-set as JSON to w. A bundle with
// validation diagnostics is rejected outright: the change-set
// generator assumes a bundle that Validate has already accepted.
func process(r io.Reader, w io.Writer) error {
	data, err := bundle.ReadBundleData(r)
	if err != nil {
		return err
	}
	if diags := bundle.Validate(data); len(diags) > 0 {
		return fmt.Errorf("invalid bundle:\n  %s", strings.Join(diags, "\n  "))
	}
	records, err := bundleplan.FromData(data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

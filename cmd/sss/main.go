// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This binary splits secrets into share bundles and combines them again.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"flag"
	"github.com/GoogleCloudPlatform/secretsharing/internal/bundle"
	"github.com/GoogleCloudPlatform/secretsharing/secrets"
	"github.com/GoogleCloudPlatform/secretsharing/shamir"
	"github.com/alecthomas/colour"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"github.com/google/tink/go/subtle/random"
)

// The current version, displayed via the `version` subcommand.
const sssVersion string = "0.1.0"

// splitCmd handles CLI options for the split command.
type splitCmd struct {
	configFile string
	threshold  int
	shares     int
	generate   int
	outDir     string
	prefix     string
	quiet      bool
}

func (*splitCmd) Name() string { return "split" }
func (*splitCmd) Synopsis() string {
	return "splits a secret into share bundles"
}
func (*splitCmd) Usage() string {
	return fmt.Sprintf(`Usage: sss split [--config-file=<config_file>] [--threshold=<t>] [--shares=<n>] [--out-dir=<dir>] <secret_file>
       sss split --generate=<bytes> [flags] <secret_file>

Examples:
  Split a key into 5 shares, any 3 of which recover it, using %s for defaults:
    $ sss split --threshold=3 --shares=5 key.bin

  Split a secret read from stdin:
    $ my-application | sss split --threshold=2 --shares=3 -

  Generate a random 32 byte secret, write it to key.bin and split it:
    $ sss split --generate=32 --threshold=3 --shares=5 key.bin

Flags:
`, defaultConfigPath())
	// The flags are automatically printed after the returned text.
}
func (s *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.configFile, "config-file", defaultConfigPath(), "Path to a YAML file with threshold and shares defaults. Optional.")
	f.IntVar(&s.threshold, "threshold", 0, "Number of shares needed to recover the secret.")
	f.IntVar(&s.shares, "shares", 0, fmt.Sprintf("Number of shares to create, at most %d.", shamir.MaxShares))
	f.IntVar(&s.generate, "generate", 0, "Generate a random secret of this many bytes and write it to <secret_file>.")
	f.StringVar(&s.outDir, "out-dir", ".", "Directory to write the share bundles to.")
	f.StringVar(&s.prefix, "prefix", "share", "File name prefix of the share bundles.")
	f.BoolVar(&s.quiet, "quiet", false, "Suppress logging output.")
}

func (s *splitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		glog.Errorf("Not enough arguments (expected secret file)")
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig(s.configFile)
	if err != nil {
		glog.Errorf("Failed to load config: %v", err.Error())
		return subcommands.ExitFailure
	}
	threshold, numShares, err := cfg.resolve(s.threshold, s.shares)
	if err != nil {
		glog.Errorf("Invalid split configuration: %v", err.Error())
		return subcommands.ExitUsageError
	}

	secret, err := s.secret(f.Arg(0))
	if err != nil {
		glog.Errorf("Failed to obtain secret: %v", err.Error())
		return subcommands.ExitFailure
	}

	shares, err := shamir.SplitSecret(threshold, numShares, secret)
	clear(secret)
	if err != nil {
		glog.Errorf("Failed to split secret: %v", err.Error())
		return subcommands.ExitFailure
	}

	b, err := bundle.New(threshold, numShares, shares)
	if err != nil {
		glog.Errorf("Failed to create share bundle: %v", err.Error())
		return subcommands.ExitFailure
	}

	var written []string
	for _, part := range b.Split() {
		path := filepath.Join(s.outDir, fmt.Sprintf("%s-%d.yaml", s.prefix, part.Shares[0].Index()))
		data, err := part.Marshal()
		if err != nil {
			glog.Errorf("Failed to serialize share bundle: %v", err.Error())
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			glog.Errorf("Failed to write share bundle: %v", err.Error())
			return subcommands.ExitFailure
		}
		glog.V(1).Infof("Wrote share %d of split %v to %v", part.Shares[0].Index(), b.ID, path)
		written = append(written, path)
	}

	if !s.quiet {
		fmt.Fprintln(os.Stderr, "Split ID:", b.ID)
		fmt.Fprintf(os.Stderr, "Wrote %d shares, %d needed to recover: %v\n", len(written), threshold, written)
	}

	return subcommands.ExitSuccess
}

// secret reads the secret from path, or generates one and writes it to path.
func (s *splitCmd) secret(path string) ([]byte, error) {
	if s.generate > 0 {
		secret := random.GetRandomBytes(uint32(s.generate))
		if path == "-" {
			if _, err := os.Stdout.Write(secret); err != nil {
				return nil, fmt.Errorf("failed to write generated secret: %v", err)
			}
			return secret, nil
		}
		if err := os.WriteFile(path, secret, 0600); err != nil {
			return nil, fmt.Errorf("failed to write generated secret: %v", err)
		}
		return secret, nil
	}

	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open secret file: %v", err)
		}
		defer file.Close()
		in = file
	}
	return io.ReadAll(in)
}

// combineCmd handles CLI options for the combine command.
type combineCmd struct {
	out string
}

func (*combineCmd) Name() string { return "combine" }
func (*combineCmd) Synopsis() string {
	return "recovers a secret from share bundles"
}
func (*combineCmd) Usage() string {
	return `Usage: sss combine [--out=<secret_file>] <bundle_file>...

Example:
  Recover a secret from three share bundles:
    $ sss combine --out=key.bin share-0.yaml share-2.yaml share-4.yaml

Flags:
`
}
func (c *combineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "-", "File to write the recovered secret to, - for stdout.")
}

func (c *combineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		glog.Errorf("Not enough arguments (expected at least one bundle file)")
		return subcommands.ExitUsageError
	}

	var bundles []*bundle.Bundle
	for _, path := range f.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			glog.Errorf("Failed to read bundle file: %v", err.Error())
			return subcommands.ExitFailure
		}
		b, err := bundle.Parse(data)
		if err != nil {
			glog.Errorf("Failed to parse bundle file %v: %v", path, err.Error())
			return subcommands.ExitFailure
		}
		bundles = append(bundles, b)
	}

	merged, err := bundle.Merge(bundles...)
	if err != nil {
		glog.Errorf("Failed to merge bundles: %v", err.Error())
		return subcommands.ExitFailure
	}
	glog.V(1).Infof("Combining %d shares of split %v", len(merged.Shares), merged.ID)

	secret, err := merged.Recover()
	if err != nil {
		glog.Errorf("Failed to recover secret: %v", err.Error())
		return subcommands.ExitFailure
	}
	defer clear(secret)

	if c.out == "-" {
		if _, err := os.Stdout.Write(secret); err != nil {
			glog.Errorf("Failed to write secret: %v", err.Error())
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, secret, 0600); err != nil {
		glog.Errorf("Failed to write secret: %v", err.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// selftestCmd round-trips random secrets through every supported threshold.
type selftestCmd struct {
	secretLen int
}

func (*selftestCmd) Name() string { return "selftest" }
func (*selftestCmd) Synopsis() string {
	return "splits and recovers random secrets for every threshold"
}
func (*selftestCmd) Usage() string {
	return `Usage: sss selftest [--secret-len=<bytes>]

Flags:
`
}
func (st *selftestCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&st.secretLen, "secret-len", 32, "Length of the random secrets.")
}

func (st *selftestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if st.secretLen < 1 {
		glog.Errorf("--secret-len must be positive, got %d", st.secretLen)
		return subcommands.ExitUsageError
	}
	failed := false
	for total := 1; total <= shamir.MaxShares; total++ {
		name := fmt.Sprintf("%d shares, thresholds 1-%d", total, total)
		if err := roundTrip(total, st.secretLen); err != nil {
			colour.Printf("^1 - %v: %v^R\n", name, err)
			failed = true
			continue
		}
		colour.Printf("^2 - %v^R\n", name)
	}
	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// roundTrip splits a random secret with every threshold up to total and
// recovers it from the first and from the last `threshold` shares.
func roundTrip(total, secretLen int) error {
	for threshold := 1; threshold <= total; threshold++ {
		secret := random.GetRandomBytes(uint32(secretLen))
		shares, err := shamir.SplitSecret(threshold, total, secret)
		if err != nil {
			return fmt.Errorf("threshold %d: %v", threshold, err)
		}
		for _, subset := range [][]secrets.Share{shares[:threshold], shares[total-threshold:]} {
			got, err := shamir.RecoverSecret(subset)
			if err != nil {
				return fmt.Errorf("threshold %d: %v", threshold, err)
			}
			if !bytes.Equal(got, secret) {
				return fmt.Errorf("threshold %d: recovered secret does not match", threshold)
			}
		}
	}
	return nil
}

// versionCmd handles CLI options for the version command.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: sss version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("sss Version %s\n", sssVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&splitCmd{}, "")
	subcommands.Register(&combineCmd{}, "")
	subcommands.Register(&selftestCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

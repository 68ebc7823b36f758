// Copyright 2026 Google LLC
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

// This binary is the main entrypoint for the cfshare command line tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LithiumSR/cfshare/client"
	"github.com/LithiumSR/cfshare/config"
	cferrors "github.com/LithiumSR/cfshare/internal/errors"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"github.com/spf13/afero"
)

// The current version, displayed via the `version` subcommand.
const cfshareVersion string = "0.1.0"

// commonFlags are shared by the subcommands that touch files.
type commonFlags struct {
	configFile  string
	metricsFile string
	quiet       bool
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config-file", "", "Path to a cfshare YAML config file. Defaults to "+defaultConfigPath()+".")
	f.StringVar(&c.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file. Overrides metricsFile in the config.")
	f.BoolVar(&c.quiet, "quiet", false, "Suppress informational output.")
}

func defaultConfigPath() string {
	path, err := config.DefaultPath()
	if err != nil {
		glog.Errorf("Failed to get config directory location: %v", err)
		return ""
	}
	return path
}

// load reads the configuration and builds a client from it.
func (c *commonFlags) load(fs afero.Fs) (*config.Config, *client.ShareClient, error) {
	path, explicit := c.configFile, true
	if path == "" {
		path, explicit = defaultConfigPath(), false
	}
	var cfg *config.Config
	if path == "" {
		cfg = config.Defaults()
	} else {
		var err error
		if cfg, err = config.Load(fs, path, explicit); err != nil {
			return nil, nil, err
		}
	}
	if c.metricsFile != "" {
		cfg.MetricsFile = c.metricsFile
	}
	scheme, err := cfg.Scheme()
	if err != nil {
		return nil, nil, err
	}
	sc := &client.ShareClient{
		Fs:        fs,
		Scheme:    scheme,
		ChunkSize: cfg.ChunkSize,
		TempDir:   cfg.TempDir,
	}
	if cfg.MetricsFile != "" {
		sc.Metrics = client.NewMetrics()
	}
	return cfg, sc, nil
}

func writeMetrics(cfg *config.Config, sc *client.ShareClient) {
	if sc.Metrics == nil {
		return
	}
	if err := sc.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		glog.Warningf("Failed to write metrics to %s: %v", cfg.MetricsFile, err)
	}
}

// describe turns an error into a message for the user.
func describe(err error) string {
	switch cferrors.KindOf(err) {
	case cferrors.Configuration:
		return fmt.Sprintf("Invalid configuration: %v", err)
	case cferrors.Entropy:
		return fmt.Sprintf("Could not obtain random bytes: %v", err)
	case cferrors.Parse:
		return fmt.Sprintf("Input is not a cfshare fragment or share file: %v", err)
	case cferrors.Consistency:
		return fmt.Sprintf("Inputs do not belong together: %v", err)
	case cferrors.Share:
		return fmt.Sprintf("Shares could not be combined: %v", err)
	case cferrors.Integrity:
		return fmt.Sprintf("Integrity check failed, the data was modified or the shares are wrong: %v", err)
	case cferrors.IO:
		return fmt.Sprintf("File error: %v", err)
	default:
		return err.Error()
	}
}

// splitCmd handles CLI options for the split command.
type splitCmd struct {
	commonFlags
	threshold  int
	total      int
	cipher     string
	hardened   bool
	sharesOnly bool
	keyFile    string
}

func (*splitCmd) Name() string { return "split" }
func (*splitCmd) Synopsis() string {
	return "encrypts a file and splits it into fragments"
}
func (*splitCmd) Usage() string {
	return `Usage: cfshare split --threshold=<M> --total=<N> [--cipher=<name>] [--shares-only] <input_file> <output_prefix>

Examples:
  Split into 5 fragments, any 3 of which restore the file:
    $ cfshare split --threshold=3 --total=5 secret.tar secret.tar
    Wrote secret.tar1_5 ... secret.tar5_5

  Split into 3 fragments that are all needed, each a third of the size:
    $ cfshare split --threshold=3 --total=3 secret.tar secret.tar

  Keep one encrypted container and write small share files:
    $ cfshare split --threshold=2 --total=3 --shares-only secret.tar secret.tar.enc
    Wrote secret.tar.enc, secret.tar.enc1_3.share ... secret.tar.enc3_3.share

Flags:
`
}
func (s *splitCmd) SetFlags(f *flag.FlagSet) {
	s.commonFlags.register(f)
	f.IntVar(&s.threshold, "threshold", 0, "Number of fragments needed to restore the file.")
	f.IntVar(&s.total, "total", 0, "Number of fragments to write.")
	f.StringVar(&s.cipher, "cipher", "", "Cipher: aes, chacha20 or camellia, optionally with a -hardened suffix. Overrides the config.")
	f.BoolVar(&s.hardened, "hardened", false, "Derive separate keys and authenticate the ciphertext.")
	f.BoolVar(&s.sharesOnly, "shares-only", false, "Write one container and share files instead of fragments.")
	f.StringVar(&s.keyFile, "key-file", "", "Use the 32 bytes in this file as the key instead of a random one. Optional.")
}

func (s *splitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		glog.Errorf("Expected an input file and an output prefix, got %d arguments", f.NArg())
		return subcommands.ExitUsageError
	}
	fs := afero.NewOsFs()
	cfg, sc, err := s.load(fs)
	if err != nil {
		glog.Errorf("%s", describe(err))
		return subcommands.ExitFailure
	}
	if s.cipher != "" {
		cfg.Cipher = s.cipher
	}
	if s.hardened {
		cfg.Hardened = true
	}
	suite, err := cfg.Suite()
	if err != nil {
		glog.Errorf("%s", describe(err))
		return subcommands.ExitFailure
	}

	var key []byte
	if s.keyFile != "" {
		if key, err = afero.ReadFile(fs, s.keyFile); err != nil {
			glog.Errorf("Failed to read key file: %v", err)
			return subcommands.ExitFailure
		}
		defer clear(key)
	}

	res, err := sc.Split(ctx, client.SplitOptions{
		Input:        f.Arg(0),
		OutputPrefix: f.Arg(1),
		Threshold:    s.threshold,
		Total:        s.total,
		Suite:        suite,
		SharesOnly:   s.sharesOnly,
		Key:          key,
	})
	writeMetrics(cfg, sc)
	if err != nil {
		glog.Errorf("%s", describe(err))
		return subcommands.ExitFailure
	}

	if !s.quiet {
		fmt.Printf("Wrote %d files (%v, %v):\n", len(res.Files), res.Layout, res.Suite)
		for _, name := range res.Files {
			fmt.Println(" ", name)
		}
		fmt.Printf("Any %d of %d shares restore the file.\n", s.threshold, s.total)
	}
	return subcommands.ExitSuccess
}

// stringList collects a repeated string flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

// bindCmd handles CLI options for the bind command.
type bindCmd struct {
	commonFlags
	output     string
	shareFiles stringList
}

func (*bindCmd) Name() string { return "bind" }
func (*bindCmd) Synopsis() string {
	return "restores a file from fragments or from a container and share files"
}
func (*bindCmd) Usage() string {
	return `Usage: cfshare bind --output=<file> [--share=<share_file>]... <fragment>...

Examples:
  Restore from any 3 of the 5 fragments:
    $ cfshare bind --output=secret.tar secret.tar1_5 secret.tar4_5 secret.tar5_5
    Restored 10240 bytes to secret.tar from shares [1 4 5]

  Restore a shares-only container:
    $ cfshare bind --output=secret.tar --share=secret.tar.enc1_3.share --share=secret.tar.enc3_3.share secret.tar.enc

Flags:
`
}
func (b *bindCmd) SetFlags(f *flag.FlagSet) {
	b.commonFlags.register(f)
	f.StringVar(&b.output, "output", "", "Path of the restored file.")
	f.Var(&b.shareFiles, "share", "A share file for a shares-only container. Repeat for each share.")
}

func (b *bindCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		glog.Errorf("No fragments given")
		return subcommands.ExitUsageError
	}
	cfg, sc, err := b.load(afero.NewOsFs())
	if err != nil {
		glog.Errorf("%s", describe(err))
		return subcommands.ExitFailure
	}

	md, err := sc.Reconstruct(ctx, f.Args(), b.output, b.shareFiles)
	writeMetrics(cfg, sc)
	if err != nil {
		glog.Errorf("%s", describe(err))
		return subcommands.ExitFailure
	}

	if !b.quiet {
		fmt.Printf("Restored %d bytes to %s from shares %v (%v, %v)\n", md.Bytes, b.output, md.Indices, md.Layout, md.Suite)
	}
	return subcommands.ExitSuccess
}

// inspectCmd handles CLI options for the inspect command.
type inspectCmd struct{}

func (*inspectCmd) Name() string { return "inspect" }
func (*inspectCmd) Synopsis() string {
	return "prints the headers of fragments and share files"
}
func (*inspectCmd) Usage() string {
	return `Usage: cfshare inspect <file>...

Files ending in .share are read as share files, anything else as a fragment.
Share tokens are never printed, only a short fingerprint.
`
}
func (*inspectCmd) SetFlags(*flag.FlagSet) {}

func (*inspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		glog.Errorf("No files given")
		return subcommands.ExitUsageError
	}
	sc := &client.ShareClient{Fs: afero.NewOsFs()}
	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		info, err := sc.Inspect(path)
		if err != nil {
			glog.Errorf("%s", describe(err))
			status = subcommands.ExitFailure
			continue
		}
		printInfo(os.Stdout, info)
	}
	return status
}

func printInfo(w io.Writer, info *client.ArtifactInfo) {
	fmt.Fprintf(w, "%s:\n", info.Path)
	if info.IsShare {
		fmt.Fprintln(w, "  type:        share file")
	} else {
		fmt.Fprintf(w, "  type:        fragment (%v)\n", info.Layout)
	}
	fmt.Fprintf(w, "  cipher:      %v\n", info.Suite)
	fmt.Fprintf(w, "  index:       %d\n", info.ShareIndex)
	fmt.Fprintf(w, "  fingerprint: %s\n", info.Fingerprint)
	fmt.Fprintf(w, "  header:      %d bytes\n", info.HeaderLen)
	if !info.IsShare {
		fmt.Fprintf(w, "  body:        %d bytes\n", info.BodyLen)
	}
}

// versionCmd handles CLI options for the version command.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: cfshare version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("cfshare version %s\n", cfshareVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&splitCmd{}, "")
	subcommands.Register(&bindCmd{}, "")
	subcommands.Register(&inspectCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	ctx := context.Background()
	status := subcommands.Execute(ctx)
	glog.Flush()
	os.Exit(int(status))
}

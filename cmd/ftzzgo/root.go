package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivoronin/ftzzgo/internal/config"
	"github.com/ivoronin/ftzzgo/internal/ftzzerr"
	"github.com/ivoronin/ftzzgo/internal/ftzzlog"
	"github.com/ivoronin/ftzzgo/internal/orchestrator"
)

// genOptions holds the raw CLI flag values, before merging against an
// optional config file and parsing human-readable strings into the typed
// values orchestrator.Config expects.
type genOptions struct {
	filesStr       string
	filesExact     bool
	totalBytesStr  string
	fillByteStr    string
	bytesExact     bool
	exact          bool
	maxDepth       int
	ftdRatio       float64
	auditOutput    string
	seed           uint64
	dupPercentage  float64
	maxDupsPerFile int
	permissionsStr string
	configPath     string
	verbose        bool
	noProgress     bool
}

func newRootCmd() *cobra.Command {
	opts := &genOptions{
		maxDepth:       5,
		maxDupsPerFile: 2,
	}

	cmd := &cobra.Command{
		Use:     "ftzzgo [path]",
		Short:   "Generate a randomized file and directory tree fixture",
		Version: version + " (" + commit + ")",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runGenerate(c, root, opts)
		},
	}

	bindGenFlags(cmd, opts)
	return cmd
}

// bindGenFlags registers the generate-operation flags on cmd against opts.
// Split out from newRootCmd so tests can parse flags into an opts value
// they hold a reference to.
func bindGenFlags(cmd *cobra.Command, opts *genOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.filesStr, "files", "n", "", "approximate number of files to generate")
	flags.BoolVar(&opts.filesExact, "files-exact", false, "generate exactly --files files")
	flags.StringVarP(&opts.totalBytesStr, "total-bytes", "b", "0", "total bytes of file content across the tree (e.g. 10M, 1GiB)")
	flags.StringVar(&opts.fillByteStr, "fill-byte", "", "fixed byte value to fill file content with, instead of random bytes (requires -b)")
	flags.BoolVar(&opts.bytesExact, "bytes-exact", false, "make --total-bytes an exact total rather than an approximate one (requires -b)")
	flags.BoolVarP(&opts.exact, "exact", "e", false, "shorthand for --files-exact and, if -b is set, --bytes-exact")
	flags.IntVarP(&opts.maxDepth, "max-depth", "d", opts.maxDepth, "maximum directory nesting depth")
	flags.Float64VarP(&opts.ftdRatio, "ftd-ratio", "r", 0, "expected files per directory (default: files/1000)")
	flags.StringVarP(&opts.auditOutput, "audit-output", "a", "", "write an audit trail CSV to this path")
	flags.Uint64Var(&opts.seed, "seed", 0, "RNG seed; the same seed and flags always produce the same tree")
	flags.Float64Var(&opts.dupPercentage, "duplicate-percentage", 0, "expected number of byte-identical duplicates, as a percentage of the primary file count")
	flags.IntVar(&opts.maxDupsPerFile, "max-duplicates-per-file", opts.maxDupsPerFile, "maximum files sharing one content, the original included (each duplicated file gets 1 to N-1 copies)")
	flags.StringVar(&opts.permissionsStr, "permissions", "", "comma-separated octal mode palette applied to generated files, e.g. 600,644,755")
	flags.StringVar(&opts.configPath, "config", "", "TOML file of defaults; explicit flags always override it")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose diagnostic logging")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable progress output")
}

// resolved holds the final, merged, typed configuration used to build an
// orchestrator.Config, after CLI flags have been reconciled against an
// optional config file.
type resolved struct {
	files          uint64
	filesExact     bool
	totalBytes     uint64
	fillByte       *byte
	bytesExact     bool
	maxDepth       int
	ftdRatio       float64
	auditOutput    string
	seed           uint64
	dupPercentage  float64
	maxDupsPerFile int
	permissions    []uint16
}

func mergeOptions(c *cobra.Command, opts *genOptions) (resolved, error) {
	var file *config.File
	if opts.configPath != "" {
		f, err := config.Load(opts.configPath)
		if err != nil {
			return resolved{}, err
		}
		file = f
	}
	if file == nil {
		file = &config.File{}
	}

	flags := c.Flags()
	var r resolved

	filesCLI, filesSet := uint64(0), flags.Changed("files")
	if filesSet {
		v, err := parseSize(opts.filesStr)
		if err != nil {
			return resolved{}, ftzzerr.New(ftzzerr.InvalidArgsError, fmt.Errorf("--files: %w", err))
		}
		filesCLI = v
	}
	r.files = config.MergeUint64(filesCLI, filesSet, file.Files, 0)
	if r.files == 0 {
		return resolved{}, ftzzerr.New(ftzzerr.MissingNumFilesError, fmt.Errorf("--files (or a config file's files key) is required"))
	}

	r.filesExact = config.MergeBool(opts.filesExact, flags.Changed("files-exact"), file.FilesExact, false)

	totalBytesCLI, totalBytesSet := uint64(0), flags.Changed("total-bytes")
	if totalBytesSet {
		v, err := parseSize(opts.totalBytesStr)
		if err != nil {
			return resolved{}, ftzzerr.New(ftzzerr.InvalidArgsError, fmt.Errorf("--total-bytes: %w", err))
		}
		totalBytesCLI = v
	}
	r.totalBytes = config.MergeUint64(totalBytesCLI, totalBytesSet, file.TotalBytes, 0)

	r.bytesExact = config.MergeBool(opts.bytesExact, flags.Changed("bytes-exact"), file.BytesExact, false)

	exact := config.MergeBool(opts.exact, flags.Changed("exact"), file.Exact, false)
	if flags.Changed("exact") && (flags.Changed("files-exact") || flags.Changed("bytes-exact")) {
		return resolved{}, ftzzerr.New(ftzzerr.ConfigurationError, fmt.Errorf("--exact cannot be combined with --files-exact or --bytes-exact"))
	}
	if exact {
		r.filesExact = true
		if r.totalBytes > 0 {
			r.bytesExact = true
		}
	}

	if opts.fillByteStr != "" || file.FillByte != nil {
		var raw uint8
		if flags.Changed("fill-byte") {
			v, err := parseFillByte(opts.fillByteStr)
			if err != nil {
				return resolved{}, ftzzerr.New(ftzzerr.InvalidArgsError, err)
			}
			raw = v
		} else if file.FillByte != nil {
			raw = *file.FillByte
		}
		b := byte(raw)
		r.fillByte = &b
	}

	if r.fillByte != nil && r.totalBytes == 0 {
		return resolved{}, ftzzerr.New(ftzzerr.ConfigurationError, fmt.Errorf("--fill-byte requires --total-bytes"))
	}
	if r.bytesExact && r.totalBytes == 0 {
		return resolved{}, ftzzerr.New(ftzzerr.ConfigurationError, fmt.Errorf("--bytes-exact requires --total-bytes"))
	}

	r.maxDepth = config.MergeInt(opts.maxDepth, flags.Changed("max-depth"), file.MaxDepth, 5)
	r.ftdRatio = config.MergeFloat64(opts.ftdRatio, flags.Changed("ftd-ratio"), file.FtdRatio, 0)
	r.auditOutput = config.MergeString(opts.auditOutput, flags.Changed("audit-output"), file.AuditOutput, "")
	r.seed = config.MergeUint64(opts.seed, flags.Changed("seed"), file.Seed, 0)
	r.dupPercentage = config.MergeFloat64(opts.dupPercentage, flags.Changed("duplicate-percentage"), file.DuplicatePercentage, 0)
	r.maxDupsPerFile = config.MergeInt(opts.maxDupsPerFile, flags.Changed("max-duplicates-per-file"), file.MaxDuplicatesPerFile, 2)

	if opts.permissionsStr != "" {
		modes, err := parsePermissions(opts.permissionsStr)
		if err != nil {
			return resolved{}, ftzzerr.New(ftzzerr.InvalidArgsError, err)
		}
		r.permissions = modes
	}

	return r, nil
}

func runGenerate(c *cobra.Command, root string, opts *genOptions) error {
	ftzzlog.Init(opts.verbose)

	r, err := mergeOptions(c, opts)
	if err != nil {
		return err
	}

	cfg := orchestrator.Config{
		RootDir:              root,
		NumFiles:             r.files,
		FilesExact:           r.filesExact,
		TotalBytes:           r.totalBytes,
		FillByte:             r.fillByte,
		BytesExact:           r.bytesExact,
		MaxDepth:             r.maxDepth,
		FtdRatio:             r.ftdRatio,
		Seed:                 r.seed,
		DuplicatePercentage:  r.dupPercentage,
		MaxDuplicatesPerFile: r.maxDupsPerFile,
		Permissions:          r.permissions,
		AuditOutputPath:      r.auditOutput,
		ShowProgress:         !opts.noProgress,
	}

	ftzzlog.Logger.WithField("root", root).Debug("starting generation")

	res, err := orchestrator.Generate(c.Context(), cfg)
	if err != nil {
		return err
	}

	ftzzlog.Logger.WithFields(map[string]any{
		"files": res.FilesCreated,
		"dirs":  res.DirsCreated,
		"bytes": res.BytesWritten,
	}).Debug("generation complete")

	return nil
}

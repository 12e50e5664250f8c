package cli

import (
	"fmt"
	"os"

	"github.com/effective-security/xlog"
	"github.com/effective-security/xpgp/armor"
	"github.com/effective-security/xpgp/keyring"
	"github.com/effective-security/xpgp/tpk"
	"github.com/effective-security/xpgp/x/print"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// KeysCmd provides transferable public key commands
type KeysCmd struct {
	Info    KeyInfoCmd    `cmd:"" help:"print transferable key info"`
	Verify  KeyVerifyCmd  `cmd:"" help:"verify subkey binding signatures"`
	Export  KeyExportCmd  `cmd:"" help:"re-armor a transferable key"`
	Dearmor KeyDearmorCmd `cmd:"" help:"decode armor to binary packets"`
}

// KeyInfoCmd specifies flags for the Info action
type KeyInfoCmd struct {
	In string `kong:"arg" required:"" help:"armored key file name"`
}

// Run the command
func (a *KeyInfoCmd) Run(ctx *Cli) error {
	data, err := ctx.ReadFile(a.In)
	if err != nil {
		return errors.WithMessage(err, "unable to load key file")
	}

	list, err := keyring.Certificates(data)
	if err != nil {
		return errors.WithMessage(err, "unable to parse keys")
	}
	if len(list) == 0 {
		return errors.New("no transferable public keys found")
	}

	print.Certificates(ctx.Writer(), list)

	return nil
}

// KeyVerifyCmd specifies flags for the Verify action
type KeyVerifyCmd struct {
	In string `kong:"arg" required:"" help:"armored key file name"`
}

// Run the command
func (a *KeyVerifyCmd) Run(ctx *Cli) error {
	data, err := ctx.ReadFile(a.In)
	if err != nil {
		return errors.WithMessage(err, "unable to load key file")
	}

	list, err := keyring.Certificates(data)
	if err != nil {
		return errors.WithMessage(err, "unable to parse keys")
	}
	if len(list) == 0 {
		return errors.New("no transferable public keys found")
	}

	w := ctx.Writer()
	for _, c := range list {
		if err := c.Verify(); err != nil {
			fmt.Fprintf(w, "FAILED: %s\n", c.KeyIDString())
			return errors.WithMessage(err, "verification failed")
		}
		fmt.Fprintf(w, "OK: %s\n", c.KeyIDString())
	}

	return nil
}

// KeyExportCmd specifies flags for the Export action
type KeyExportCmd struct {
	In         string `kong:"arg" required:"" help:"armored key file name"`
	Out        string `help:"optional, output file for the armored key"`
	Headers    string `help:"optional, yaml file with armor headers"`
	NoChecksum bool   `help:"optional, omit the legacy CRC24 trailer"`
}

// Run the command
func (a *KeyExportCmd) Run(ctx *Cli) error {
	data, err := ctx.ReadFile(a.In)
	if err != nil {
		return errors.WithMessage(err, "unable to load key file")
	}

	cert, report, err := tpk.ParseArmored(data)
	if err != nil {
		return errors.WithMessage(err, "unable to parse key")
	}
	if !report.Clean() {
		logger.KV(xlog.WARNING, "reason", "dropped_elements", "count", len(report.Dropped))
	}

	opts := &tpk.ArmorOptions{
		SkipChecksum: a.NoChecksum,
	}
	if a.Headers != "" {
		hd, err := os.ReadFile(a.Headers)
		if err != nil {
			return errors.WithMessage(err, "unable to load headers file")
		}
		if err := yaml.Unmarshal(hd, &opts.Headers); err != nil {
			return errors.WithMessage(err, "unable to parse headers file")
		}
	}

	armored, err := cert.ArmoredBytes(opts)
	if err != nil {
		return errors.WithMessage(err, "unable to armor key")
	}

	return ctx.WriteFile(a.Out, armored)
}

// KeyDearmorCmd specifies flags for the Dearmor action
type KeyDearmorCmd struct {
	In  string `kong:"arg" required:"" help:"armored key file name"`
	Out string `help:"optional, output file for the binary packets"`
}

// Run the command
func (a *KeyDearmorCmd) Run(ctx *Cli) error {
	data, err := ctx.ReadFile(a.In)
	if err != nil {
		return errors.WithMessage(err, "unable to load key file")
	}

	block, _, err := armor.DecodeBlock(data)
	if err != nil {
		return errors.WithMessage(err, "unable to decode armor")
	}
	if !tpk.MatchesBlockType(block.Type) {
		return errors.Errorf("unexpected armor block type: %q", block.Type)
	}

	return ctx.WriteFile(a.Out, block.Bytes)
}

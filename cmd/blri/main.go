// Command blri prepares and flashes Bouffalo ROM boot images.
//
//	blri patch <input> [output]
//	blri flash <image> [--port <name>]
//	blri elf2bin <input> [--output <path>] [--patch]
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/moffa90/go-blri/bootimage"
	"github.com/moffa90/go-blri/isp"
)

var log = logrus.New()

func usage() {
	fmt.Fprintf(os.Stderr, `blri - Bouffalo ROM image helper

Usage:
  blri patch <input> [output]         validate and repair a boot image
  blri flash <image> [--port <name>]  flash an image to a device
  blri elf2bin <input> [flags]        convert an ELF file to a flat binary

Flags for flash:
  -p, --port string    serial port; prompts interactively when omitted

Flags for elf2bin:
  -o, --output string  output path (default: input path with .bin appended)
      --patch          run patch on the converted binary
  -v, --verbose        enable debug logging
`)
}

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "patch":
		err = runPatch(os.Args[2:])
	case "flash":
		err = runFlash(os.Args[2:])
	case "elf2bin":
		err = runElf2Bin(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func runPatch(args []string) error {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		usage()
		return errors.New("patch requires an input file and an optional output file")
	}

	inputPath := fs.Arg(0)
	outputPath := inputPath
	if fs.NArg() == 2 {
		outputPath = fs.Arg(1)
	}

	ops, err := bootimage.PatchFile(inputPath, outputPath)
	if err != nil {
		return err
	}
	for _, op := range ops {
		log.WithField("offset", fmt.Sprintf("0x%x", op.Offset)).Infof("repaired %s", op.Kind)
	}
	log.Infof("patched image saved to %s", outputPath)
	return nil
}

func runFlash(args []string) error {
	var portName string
	var verbose bool

	fs := flag.NewFlagSet("flash", flag.ExitOnError)
	fs.Usage = usage
	fs.StringVarP(&portName, "port", "p", "", "serial port to flash through")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		usage()
		return errors.New("flash requires exactly one image file")
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	image, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	if portName == "" {
		portName, err = selectPort()
		if err != nil {
			return err
		}
	}

	port, err := isp.OpenPort(portName)
	if err != nil {
		return err
	}
	defer port.Close()

	sess := isp.New(port,
		isp.WithLogger(sessionLogger{log}),
		isp.WithProgressCallback(func(p isp.Progress) {
			if p.Phase == isp.PhaseWrite {
				log.Infof("flashing: %d/%d", p.BytesWritten, p.TotalBytes)
			}
		}),
	)

	if err := sess.Flash(image); err != nil {
		return err
	}
	log.Info("flashing done")
	return nil
}

func runElf2Bin(args []string) error {
	var outputPath string
	var patch bool
	var verbose bool

	fs := flag.NewFlagSet("elf2bin", flag.ExitOnError)
	fs.Usage = usage
	fs.StringVarP(&outputPath, "output", "o", "", "output binary path")
	fs.BoolVar(&patch, "patch", false, "patch the output binary")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		usage()
		return errors.New("elf2bin requires exactly one input file")
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	inputPath := fs.Arg(0)
	if outputPath == "" {
		outputPath = inputPath + ".bin"
	}

	elfData, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	bin, sections, err := bootimage.ElfToBin(elfData)
	if err != nil {
		return err
	}
	log.Infof("found %d loadable sections", len(sections))
	for _, s := range sections {
		log.Debugf("section %s at 0x%x, size 0x%x", s.Name, s.Address, s.Size)
	}

	if err := os.WriteFile(outputPath, bin, 0o644); err != nil {
		return err
	}
	log.Infof("binary saved to %s", outputPath)

	if patch {
		ops, err := bootimage.PatchFile(outputPath, outputPath)
		if err != nil {
			return err
		}
		for _, op := range ops {
			log.WithField("offset", fmt.Sprintf("0x%x", op.Offset)).Infof("repaired %s", op.Kind)
		}
	}
	return nil
}

// selectPort prompts for a serial port when --port was not given. Only
// works on a terminal; in a pipeline the flag is mandatory.
func selectPort() (string, error) {
	ports, err := isp.ListPorts()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		return "", errors.New("no serial ports found")
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", errors.New("no --port given and stdin is not a terminal")
	}

	fmt.Println("Select a serial port:")
	for i, p := range ports {
		fmt.Printf("  %d) %s\n", i+1, p)
	}
	fmt.Print("> ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(ports) {
		return "", fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	return ports[choice-1], nil
}

// sessionLogger adapts logrus to the isp.Logger interface.
type sessionLogger struct {
	log *logrus.Logger
}

func (l sessionLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l sessionLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Info(msg)
}

func (l sessionLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Error(msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return fields
}

package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: raster2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Lay images, HTML, Markdown or URLs out on PDF pages (default)")
	fmt.Fprintln(w, "  serve      Run the HTTP conversion endpoint")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check Chrome and the PDF renderer")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'raster2pdf help <command>' for details on a specific command.")
}

// printPageUsage prints the flags shared by convert and serve.
func printPageUsage(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --format <s>          a3, a4, a5, letter, legal, tabloid or WxH in mm")
	fmt.Fprintln(w, "      --orientation <s>     portrait, landscape")
	fmt.Fprintln(w, "  -m, --margin <s>          none, small, medium, large, mm or top,right,bottom,left")
	fmt.Fprintln(w, "  -r, --resolution <s>      low, normal, medium, high, extreme or a multiplier")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Encoding:")
	fmt.Fprintln(w, "      --mime-type <s>       image/jpeg (default) or image/png")
	fmt.Fprintln(w, "      --quality <f>         JPEG quality ratio (0-1]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture:")
	fmt.Fprintln(w, "  -s, --selector <s>        Element to capture (default body)")
	fmt.Fprintln(w, "      --window-width <n>    Viewport width in CSS px (default 1440)")
	fmt.Fprintln(w, "      --css <path>          Stylesheet for HTML and Markdown inputs")
	fmt.Fprintln(w, "  -t, --timeout <d>         Capture timeout, e.g. 30s, 2m")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: raster2pdf convert <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Lay tall rasters out on fixed-size PDF pages.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Image (png, jpg, gif, bmp, tiff), .html, .md file, directory or http(s) URL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "      --method <s>          save (default), open, build")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --density <f>         Pixels per CSS pixel of image inputs (default: resolution)")
	fmt.Fprintln(w)
	printPageUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: raster2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve POST /convert (multipart image or url field) and GET /healthz.")
	fmt.Fprintln(w, "Form fields override flags: format, orientation, margin, resolution,")
	fmt.Fprintln(w, "density, mimeType, quality, method, filename, selector.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "      --max-upload <n>      Maximum upload size in MB (default 32)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel conversions (0 = auto)")
	fmt.Fprintln(w)
	printPageUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: raster2pdf config [-c name]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after applying RASTER2PDF_* variables.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: raster2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser used for HTML, Markdown and URL inputs, then build")
	fmt.Fprintln(w, "a test document. Exits 1 when the renderer fails.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: raster2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: raster2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}

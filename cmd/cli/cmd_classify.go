package main

import (
	"fmt"
	"os"

	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/ui"
)

func runClassify() {
	cmd := newCommand("classify", "phishguard classify <risk label> [status label]",
		"Map a risk label to its verdict tier without contacting the scanning service.")
	cmd.parse(os.Args[2:])

	if len(cmd.args) == 0 {
		exitWithUsage("a risk label is required", cmd.usage)
	}

	v := risk.Classify(cmd.arg(0), cmd.arg(1))
	w := ui.Output()
	fmt.Fprintf(w, "  %s  %s\n", ui.TierLabel(v.Tier), v.Tier.Message())
	if v.Verified {
		fmt.Fprintf(w, "  %s\n", ui.BadgeStyle.Render("VERIFIED ENTITY"))
	}
}

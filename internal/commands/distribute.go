// Where: internal/commands/distribute.go
// What: distribute command (image replication across regions).
// Why: Publish the release image in every region the template supports.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poruru/refarch-release/internal/ami"
	"github.com/poruru/refarch-release/internal/infra/ui"
)

// DistributeCmd copies a source image into destination regions.
type DistributeCmd struct {
	AMIID        string        `name:"ami-id" required:"" help:"Source image id" env:"REFARCH_AMI_ID"`
	SrcRegion    string        `name:"src-region" required:"" help:"Region holding the source image" env:"REFARCH_SRC_REGION"`
	DestRegions  string        `name:"dest-regions" required:"" help:"Comma separated destination regions" env:"REFARCH_DEST_REGIONS"`
	Version      string        `required:"" help:"Release version used in copy names" env:"REFARCH_VERSION"`
	Flavor       string        `required:"" help:"Image flavor used in copy names" env:"REFARCH_FLAVOR"`
	TestMode     bool          `name:"test-mode" help:"Simulate the run without calling AWS" env:"REFARCH_TEST_MODE"`
	WaitInterval time.Duration `name:"wait-interval" default:"40s" help:"Delay between availability checks" env:"REFARCH_WAIT_INTERVAL"`
	WaitAttempts int           `name:"wait-attempts" default:"45" help:"Availability checks before giving up" env:"REFARCH_WAIT_ATTEMPTS"`
	GithubOutput string        `name:"github-output" help:"File receiving region_map_json (stdout when empty)" env:"GITHUB_OUTPUT"`
	AWS          AWSFlags      `embed:""`
}

func (c DistributeCmd) request() ami.Request {
	return ami.Request{
		SourceImageID:      strings.TrimSpace(c.AMIID),
		SourceRegion:       strings.TrimSpace(c.SrcRegion),
		DestinationRegions: ami.ParseRegions(c.DestRegions),
		NamingVersion:      strings.TrimSpace(c.Version),
		NamingFlavor:       strings.TrimSpace(c.Flavor),
	}
}

func (c DistributeCmd) summary(req ami.Request) []ui.KeyValue {
	wait := "skipped (test mode)"
	if !c.TestMode {
		wait = fmt.Sprintf("%d x %s", c.WaitAttempts, c.WaitInterval)
	}
	return []ui.KeyValue{
		{Key: "Source Image", Value: req.SourceImageID},
		{Key: "Source Region", Value: req.SourceRegion},
		{Key: "Target Regions", Value: strings.Join(req.TargetRegions(), ", ")},
		{Key: "Copy Name", Value: req.NamingVersion + "-" + req.NamingFlavor + "-<unix>"},
		{Key: "Availability Wait", Value: wait},
	}
}

func runDistribute(cli CLI, deps Dependencies, out io.Writer) int {
	cmd := cli.Distribute
	req := cmd.request()
	if err := req.Validate(); err != nil {
		return exitWithError(out, err)
	}

	console := plainUI(out)
	if cmd.TestMode {
		writeLine(out, "::notice::Running in TEST MODE. Simulating image distribution.")
	}
	console.Block("🚀", "Distribute", cmd.summary(req))

	var regionMap ami.RegionMap
	if cmd.TestMode {
		regionMap = ami.Simulate(req)
	} else {
		if deps.NewClientFactory == nil {
			return exitWithError(out, fmt.Errorf("aws client factory not configured"))
		}
		clients, err := deps.NewClientFactory(deps.Context, cmd.AWS.options(req.SourceRegion))
		if err != nil {
			return exitWithError(out, err)
		}
		replicator := &ami.Replicator{
			Clients: clients,
			UI:      console,
			Wait:    ami.WaitConfig{Interval: cmd.WaitInterval, MaxAttempts: cmd.WaitAttempts},
			Now:     deps.Now,
			Sleep:   deps.Sleep,
		}
		regionMap, err = replicator.Replicate(deps.Context, req)
		if err != nil {
			return exitWithError(out, err)
		}
	}

	payload, err := ami.Encode(regionMap)
	if err != nil {
		return exitWithError(out, err)
	}
	writeLine(out, "Final Region Map: "+payload)

	if err := writeRegionMapOutput(cmd.GithubOutput, out, regionMap); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

// writeRegionMapOutput appends the output line to path, or to out when path is empty.
func writeRegionMapOutput(path string, out io.Writer, regionMap ami.RegionMap) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ami.WriteOutput(out, ami.OutputKey, regionMap)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	if err := ami.WriteOutput(file, ami.OutputKey, regionMap); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

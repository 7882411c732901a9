package catalog

import (
	"fmt"
	"text/tabwriter"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/domain"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewCommand returns the "catalog" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Look up images, hardware and locations",
		Long: `Look up catalog entries by UUID. The lookups run concurrently and every
requested entry is reported, found or not.

Examples:
  flexctl catalog --image <uuid>
  flexctl catalog --image <uuid> --hardware <uuid> --location <uuid>`,
		Run:          runCatalog,
		SilenceUsage: true,
	}

	cmd.Flags().String("image", "", "Image UUID")
	cmd.Flags().String("hardware", "", "Server product offer UUID")
	cmd.Flags().String("location", "", "VDC UUID")
	cmd.MarkFlagsOneRequired("image", "hardware", "location")

	return cmd
}

type entry struct {
	kind, id, name, detail string
	found                  bool
}

func runCatalog(cmd *cobra.Command, args []string) {
	imageID, _ := cmd.Flags().GetString("image")
	hardwareID, _ := cmd.Flags().GetString("hardware")
	locationID, _ := cmd.Flags().GetString("location")

	sess, err := cmdutil.OpenSession(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer sess.Close()

	var image, hardware, location entry
	g, ctx := errgroup.WithContext(cmd.Context())

	if imageID != "" {
		g.Go(func() error {
			img, err := sess.Compute.GetImage(ctx, imageID)
			if err != nil {
				return fmt.Errorf("failed to look up image: %w", err)
			}
			image = describeImage(imageID, img)
			return nil
		})
	}
	if hardwareID != "" {
		g.Go(func() error {
			hw, err := sess.Compute.GetHardware(ctx, hardwareID)
			if err != nil {
				return fmt.Errorf("failed to look up hardware: %w", err)
			}
			hardware = entry{kind: "hardware", id: hardwareID}
			if hw != nil {
				hardware.name, hardware.found = hw.Name, true
			}
			return nil
		})
	}
	if locationID != "" {
		g.Go(func() error {
			loc, err := sess.Compute.GetLocation(ctx, locationID)
			if err != nil {
				return fmt.Errorf("failed to look up location: %w", err)
			}
			location = entry{kind: "location", id: locationID}
			if loc != nil {
				location.name, location.found = loc.Name, true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tNAME\tDETAILS")
	fmt.Fprintln(w, "----\t--\t----\t-------")
	missing := 0
	for _, e := range []entry{image, hardware, location} {
		if e.kind == "" {
			continue
		}
		if !e.found {
			missing++
			e.name, e.detail = "-", "not found"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.kind, e.id, e.name, e.detail)
	}
	w.Flush()

	if missing > 0 {
		cmdutil.PrintError(cmd, fmt.Errorf("%d catalog entr(y/ies) not found", missing))
	}
}

func describeImage(id string, img *domain.Image) entry {
	e := entry{kind: "image", id: id}
	if img == nil {
		return e
	}
	e.name, e.found = img.Name, true
	user := img.DefaultUser
	if user == "" {
		user = "(none)"
	}
	e.detail = fmt.Sprintf("default user %s, generated password %t", user, img.GenPassword)
	return e
}

package driver

import (
	"errors"
	"fmt"
	"strings"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/driver"
	"nathanbeddoewebdev/flexctl/internal/jobstore"
	"nathanbeddoewebdev/flexctl/internal/services/auth"
	"nathanbeddoewebdev/flexctl/internal/services/jobs"

	"github.com/spf13/cobra"
)

// NewCommand returns the "driver" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driver",
		Short: "Run provisioning driver operations against a cloud description",
		Long: `Run the machine lifecycle operations of the provisioning driver from the
command line: validate a cloud description, bring management machines up
or down, and start or stop agent machines.

The cloud description is a YAML file given with --cloud, or the file set
with 'flexctl config set cloud-file <path>'. When it carries no apiKey the
password stored by 'flexctl auth login' for its user is used.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("cloud", "", "Cloud description file (defaults to the cloud-file setting)")

	cmd.AddCommand(ValidateCommand())
	cmd.AddCommand(BootstrapCommand())
	cmd.AddCommand(TeardownCommand())
	cmd.AddCommand(ListManagementCommand())
	cmd.AddCommand(StartMachineCommand())
	cmd.AddCommand(StopMachineCommand())

	return cmd
}

// openDriver loads the cloud description and returns an initialized driver.
// The returned close function releases the job history.
func openDriver(cmd *cobra.Command) (*driver.Driver, func(), error) {
	path, _ := cmd.Flags().GetString("cloud")
	if strings.TrimSpace(path) == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		path = cfg.CloudFile
	}
	if path == "" {
		return nil, nil, errors.New("no cloud description: pass --cloud or set one with 'flexctl config set cloud-file <path>'")
	}

	cloud, err := driver.LoadCloud(path)
	if err != nil {
		return nil, nil, err
	}
	if cloud.User.APIKey == "" {
		password, err := auth.DefaultStore().GetPassword(cloud.User.User)
		if err != nil {
			return nil, nil, fmt.Errorf("cloud %s has no apiKey and no stored password for %s: %w", path, cloud.User.User, err)
		}
		cloud.User.APIKey = password
	}

	log := cmdutil.Logger(cmd)
	var repo jobstore.Repository
	if r, err := jobstore.Open(); err != nil {
		log.V(1).Info("Job history disabled", "error", err.Error())
	} else {
		repo = r
	}
	endpoint := ""
	if mt, err := cloud.ManagementTemplate(); err == nil {
		endpoint = mt.Endpoint()
	}
	history := jobs.NewService(repo, endpoint, log)

	d := driver.New(
		driver.WithLogger(log),
		driver.WithJobObserver(history),
		driver.WithEventPublisher(driver.EventFunc(func(event string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), "event: %s\n", event)
		})),
	)
	if err := d.InitDeployer(cmd.Context(), cloud); err != nil {
		history.Close()
		return nil, nil, err
	}
	return d, func() { history.Close() }, nil
}

// printMachine prints a vertical key-value table of a machine.
func printMachine(cmd *cobra.Command, md driver.MachineDetails) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  Machine ID:       %s\n", md.MachineID)
	fmt.Fprintf(out, "  Template:         %s\n", md.TemplateName)
	fmt.Fprintf(out, "  Public address:   %s\n", md.PublicAddress)
	fmt.Fprintf(out, "  Private address:  %s\n", md.PrivateAddress)
	if md.RemoteUsername != "" {
		fmt.Fprintf(out, "  Remote user:      %s\n", md.RemoteUsername)
	}
	if md.RemotePassword != "" {
		fmt.Fprintf(out, "  Remote password:  %s\n", md.RemotePassword)
	}
}

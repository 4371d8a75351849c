// Command simrouted-demo is integration-test scaffolding around the
// routing engine, structured the way the teacher's cmd/main.go wires a
// root cobra.Command plus subcommands: it loads a static route file (or
// falls back to the embedded sample topology), builds a RoutingProtocol
// over a StaticStack, and drives one operation per subcommand. It has
// no dependency on the engine's internals beyond the same public API
// any host stack integration would use.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleywu/ipv4-route-sim/internal/config"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/hoststack"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/lookup"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/protocol"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/table"
	"github.com/wesleywu/ipv4-route-sim/internal/logger"
)

var (
	version = "1.0.0"

	routeFile   string
	verboseMode bool
	randomEcmp  bool
	flowEcmp    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "simrouted-demo",
		Short:   "Demo driver for the IPv4 static-routing engine",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVarP(&routeFile, "routes", "r", "", "static route definition file (defaults to the embedded sample topology)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "debug level logging")
	rootCmd.PersistentFlags().BoolVar(&randomEcmp, "random-ecmp", false, "enable uniform-random ECMP selection")
	rootCmd.PersistentFlags().BoolVar(&flowEcmp, "flow-ecmp", false, "enable per-flow hash ECMP selection")

	rootCmd.AddCommand(routesCmd(), lookupCmd(), mrouteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildProtocol() (*protocol.RoutingProtocol, *hoststack.StaticStack, error) {
	log := logger.New(logLevel())

	specs, err := config.LoadRouteFileWithFallback(routeFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load routes: %w", err)
	}

	t := table.New()
	config.PopulateTable(t, specs)

	maxIface := 0
	for _, s := range specs {
		if s.Iface > maxIface {
			maxIface = s.Iface
		}
	}
	stack := hoststack.NewStaticStack(maxIface + 1)
	for i := 0; i <= maxIface; i++ {
		stack.AddAddress(i, hoststack.InterfaceAddress{
			Local: net.IPv4(10, 255, byte(i), 1).To4(),
			Mask:  net.CIDRMask(24, 32),
		})
	}

	p := protocol.New(t, randomEcmp, flowEcmp, log)
	p.SetIpv4Stack(stack)
	return p, stack, nil
}

func logLevel() string {
	if verboseMode {
		return "debug"
	}
	return "info"
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, stack, err := buildProtocol()
			if err != nil {
				return err
			}
			namer := func(iface int) (string, bool) {
				if iface < 0 || iface >= stack.NInterfaces() {
					return "", false
				}
				return fmt.Sprintf("eth%d", iface), true
			}
			p.Table().Print(os.Stdout, namer)
			return nil
		},
	}
}

func lookupCmd() *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve one unicast destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			ip := net.ParseIP(dest).To4()
			if ip == nil {
				return fmt.Errorf("invalid destination %q", dest)
			}
			p, _, err := buildProtocol()
			if err != nil {
				return err
			}
			header := lookup.Header{Source: net.IPv4zero, Destination: ip, Protocol: lookup.ProtoTCP}
			route, errno := p.RouteOutput(header, nil, nil)
			if errno != protocol.NoError {
				fmt.Println("no route to host")
				return nil
			}
			fmt.Printf("destination=%s gateway=%s source=%s device=%v\n",
				route.Destination, route.Gateway, route.Source, route.OutputDevice)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination address")
	cmd.MarkFlagRequired("dest")
	return cmd
}

func mrouteCmd() *cobra.Command {
	var origin, group string
	var iface int
	cmd := &cobra.Command{
		Use:   "mroute",
		Short: "Resolve one multicast (origin, group, iface) lookup",
		RunE: func(cmd *cobra.Command, args []string) error {
			originIP := net.ParseIP(origin).To4()
			groupIP := net.ParseIP(group).To4()
			if originIP == nil || groupIP == nil {
				return fmt.Errorf("invalid origin/group address")
			}
			p, _, err := buildProtocol()
			if err != nil {
				return err
			}
			resolved, ok := lookup.Multicast(p.Table().AllMulticastRoutes(), originIP, groupIP, iface)
			if !ok {
				fmt.Println("no matching multicast route")
				return nil
			}
			fmt.Printf("origin=%s group=%s parent=%d outputs=%v\n",
				resolved.Origin, resolved.Group, resolved.Parent, resolved.OutputTTL)
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "0.0.0.0", "source address")
	cmd.Flags().StringVar(&group, "group", "", "multicast group address")
	cmd.Flags().IntVar(&iface, "iface", -1, "query interface index (-1 for IF_ANY)")
	cmd.MarkFlagRequired("group")
	return cmd
}

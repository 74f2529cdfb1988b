// Command weather-client asks a running tool server for the weather.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mcp-mini/internal/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "weather-client",
		Short:        "Call get_weather on a tool server and print the result",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url, _ := cmd.Flags().GetString("url")
			city, _ := cmd.Flags().GetString("city")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			inv := client.New(url, nil)
			inv.HTTP.Timeout = timeout
			result, err := inv.GetWeather(cmd.Context(), city)
			if err != nil {
				return fmt.Errorf("get weather: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Weather in %s: %v\n", city, result)
			return nil
		},
	}
	cmd.Flags().String("url", client.DefaultURL, "Tool server /call endpoint")
	cmd.Flags().String("city", "Kolkata", "City to look up")
	cmd.Flags().Duration("timeout", 15*time.Second, "Request timeout")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/qibla"
)

func newQiblaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qibla",
		Short: "Show the direction and distance to the Kaaba",
		Args:  cobra.NoArgs,
		RunE:  runQibla,
	}
}

type qiblaJSON struct {
	Location   todayJSONLocation `json:"location"`
	Bearing    float64           `json:"bearing"`
	Compass    string            `json:"compass"`
	DistanceKm float64           `json:"distance_km"`
	Kaaba      geo.Coordinate    `json:"kaaba"`
}

func runQibla(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	q := s.qibla()
	w := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(w, qiblaJSON{
			Location:   s.locationJSON(),
			Bearing:    q.BearingDegrees,
			Compass:    q.Compass(),
			DistanceKm: q.DistanceKm,
			Kaaba:      qibla.Kaaba,
		})
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Qibla"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.loc.Label())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Direction  %s\n", display.Accent(display.Bearing(q.BearingDegrees, q.Compass())))
	fmt.Fprintf(w, "  Distance   %s\n", display.Distance(q.DistanceKm))
	fmt.Fprintf(w, "  %s\n", display.Muted("Bearing is measured clockwise from true north."))
	fmt.Fprintln(w)
	return nil
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
)

var flagSlug string

func newCitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "List the cities in the directory",
		Long:  "List the cities known to the local city directory, optionally filtered with --country.\nThe directory lives in the cache directory unless the database config key points elsewhere.",
		Args:  cobra.NoArgs,
		RunE:  runCitiesList,
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a city",
		Long:  "Add a city to the directory, or update it when the slug exists.\nWithout --latitude/--longitude the city is looked up through the Al Adhan API,\nwhich needs --country.\n\nExample:\n  halalcities cities add Oslo --country Norway --latitude 59.9139 --longitude 10.7522 --timezone Europe/Oslo --method MWL",
		Args:  cobra.ExactArgs(1),
		RunE:  runCitiesAdd,
	}
	add.Flags().StringVar(&flagSlug, "slug", "", "URL identifier (default: derived from the name)")
	cmd.AddCommand(add)

	return cmd
}

func runCitiesList(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openDirectory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cities, err := store.ListCities(cmd.Context(), FlagCountry)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if FlagJSON {
		if cities == nil {
			cities = []directory.City{}
		}
		return writeJSON(w, cities)
	}
	if len(cities) == 0 {
		fmt.Fprintln(w, "No cities found.")
		return nil
	}

	tbl := display.NewTable([]string{"Slug", "Name", "Country", "Latitude", "Longitude", "Timezone", "Method"})
	tbl.AlignRight(3)
	tbl.AlignRight(4)
	for _, c := range cities {
		tbl.AddRow([]string{
			c.Slug, c.Name, c.Country,
			strconv.FormatFloat(c.Latitude, 'f', 4, 64),
			strconv.FormatFloat(c.Longitude, 'f', 4, 64),
			c.Timezone,
			c.MethodOr(prayer.DefaultMethod).String(),
		})
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", display.Muted(fmt.Sprintf("%d cities", len(cities))))
	return nil
}

func runCitiesAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openDirectory(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	flags, root := cmd.Flags(), cmd.Root().PersistentFlags()
	hasCoords := flagWasSet(flags, root, "latitude") || flagWasSet(flags, root, "longitude")

	var city directory.City
	if hasCoords {
		city = directory.City{
			Name:      name,
			Country:   FlagCountry,
			Latitude:  FlagLatitude,
			Longitude: FlagLongitude,
		}
	} else {
		if FlagCountry == "" {
			return fmt.Errorf("--country is required to look up %q online; or pass --latitude and --longitude", name)
		}
		if city, err = fetchCity(ctx, store, name, FlagCountry); err != nil {
			return err
		}
	}

	switch {
	case flagSlug != "":
		city.Slug = flagSlug
	case city.Slug == "":
		city.Slug = directory.Slugify(name)
	}
	if flagWasSet(flags, root, "timezone") {
		city.Timezone = FlagTimezone
	}
	if flagWasSet(flags, root, "method") {
		city.Method = cfg.Method
	}
	if err := store.UpsertCity(ctx, city); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s) at %s\n", city.Name, city.Slug, city.Coordinate())
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

var geoOut string

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Print borough centroids and export the rate choropleth as GeoJSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BOROUGH\tLON\tLAT")
		for _, c := range result.Centroids {
			fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", c.Borough, c.Lon, c.Lat)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if geoOut == "" {
			return nil
		}

		fc := geojson.FeatureCollection{}
		for _, region := range result.Choropleth {
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: region.Geometry,
				Properties: map[string]interface{}{
					"borough":       region.Borough.String(),
					"incidents":     region.Count,
					"population":    region.Population,
					"rate_per_100k": region.RatePer100k,
				},
			})
		}

		data, err := json.Marshal(&fc)
		if err != nil {
			return eris.Wrap(err, "marshal choropleth")
		}
		if err := os.WriteFile(geoOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "write choropleth %s", geoOut)
		}

		zap.L().Info("choropleth written",
			zap.String("path", geoOut),
			zap.Int("regions", len(fc.Features)),
		)
		return nil
	},
}

func init() {
	geoCmd.Flags().StringVar(&geoOut, "out", "", "write choropleth GeoJSON to file")
	rootCmd.AddCommand(geoCmd)
}

package main

import (
	"fmt"

	"SmartCVD/internal/domain/models"
	"SmartCVD/internal/services/catalog"
	"SmartCVD/internal/services/risk"
	"SmartCVD/internal/services/therapy"
	"SmartCVD/internal/usecase"

	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	catalogPath   string
	mode          string
	flatReduction float64
	jsonOut       bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "cvdcalc",
		Short: "SMART cardiovascular risk calculator",
		Long: `cvdcalc estimates 10- and 5-year recurrent cardiovascular risk with the
SMART model and projects the effect of lipid therapy and interventions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.catalogPath, "catalog", "", "catalog YAML file (built-in catalog when empty)")
	pf.StringVar(&o.mode, "mode", string(models.ProjectionSummed), "projection mode: summed or flat")
	pf.Float64Var(&o.flatReduction, "flat-reduction", therapy.FlatReduction, "percentage points subtracted in flat mode")
	pf.BoolVar(&o.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newEstimateCmd(o),
		newLDLCmd(o),
		newCatalogCmd(o),
		newAssessCmd(o),
		newLiveCmd(o),
	)
	return root
}

// service builds the in-process calculator from the persistent flags.
func (o *options) service() (*usecase.AssessmentService, error) {
	cat := catalog.Default()
	if o.catalogPath != "" {
		c, err := catalog.Load(o.catalogPath)
		if err != nil {
			return nil, err
		}
		cat = c
	}
	adj, err := therapy.NewAdjustor(cat,
		therapy.WithProjectionMode(models.ProjectionMode(o.mode)),
		therapy.WithFlatReduction(o.flatReduction),
	)
	if err != nil {
		return nil, fmt.Errorf("adjustor: %w", err)
	}
	return usecase.NewAssessmentService(risk.NewEstimator(risk.SMARTModel()), adj, cat), nil
}

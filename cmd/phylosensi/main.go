package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"phylosensi/adapters/fitter"
	"phylosensi/adapters/match"
	"phylosensi/adapters/progress"
	"phylosensi/adapters/rng"
	"phylosensi/adapters/tabular"
	"phylosensi/api"
	"phylosensi/app"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
	"phylosensi/internal/config"
	"phylosensi/internal/report"
)

func main() {
	root := &cobra.Command{
		Use:   "phylosensi",
		Short: "Sensitivity analysis for phylogenetic regression models",
		Long: "phylosensi quantifies how phylogenetic regression estimates react to\n" +
			"species deletion (influence analysis) and to uncertainty in the\n" +
			"estimated tree (repeated refits over alternative trees).",
		SilenceUsage: true,
	}
	root.AddCommand(newInfluenceCmd(), newTreesCmd(), newServeCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newService(cfg *config.Config) (*app.SensitivityService, error) {
	if cfg.Fitter.URL == "" {
		return nil, fmt.Errorf("FITTER_URL is required")
	}
	remote := fitter.NewRemote(cfg.Fitter.URL, time.Duration(cfg.Fitter.TimeoutSec)*time.Second)
	svc := app.NewSensitivityService(match.NewTreeData(), remote, rng.NewSeeded(), progress.NewLogger("Sensi"))
	svc.SetWorkers(cfg.Analysis.Workers)
	return svc, nil
}

func newInfluenceCmd() *cobra.Command {
	var (
		dataPath, treePath, outPath         string
		response, predictor, evolutionModel string
		cutoff                              float64
	)
	cmd := &cobra.Command{
		Use:   "influence",
		Short: "Leave-one-species-out influence analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			if cutoff == 0 {
				cutoff = cfg.Analysis.Cutoff
			}

			traits, err := tabular.NewDataReader(dataPath).ReadTraits()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(treePath)
			if err != nil {
				return err
			}
			tree, err := phylo.ParseNewick(string(raw))
			if err != nil {
				return err
			}
			spec, err := model.NewRegressionSpec(response, predictor, model.Evolution(evolutionModel),
				model.FitOptions{Raw: cfg.Fitter.Options})
			if err != nil {
				return err
			}

			res, err := svc.RunInfluence(cmd.Context(), app.InfluenceRequest{
				Spec:   spec,
				Traits: traits,
				Tree:   tree,
				Cutoff: cutoff,
			})
			if err != nil {
				return err
			}
			fmt.Print(report.InfluenceText(res))
			if outPath != "" {
				if err := tabular.WriteTable(outPath, res.Estimates.Headers(), res.Estimates.Records()); err != nil {
					return err
				}
				log.Printf("[Sensi] estimates written to %s", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "trait table (.csv or .xlsx)")
	cmd.Flags().StringVar(&treePath, "tree", "", "phylogeny in Newick format")
	cmd.Flags().StringVar(&response, "response", "", "response trait column")
	cmd.Flags().StringVar(&predictor, "predictor", "", "predictor trait column")
	cmd.Flags().StringVar(&evolutionModel, "model", "lambda", "evolutionary model tag")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "standardized-difference cutoff (default from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the estimates table (.csv or .xlsx)")
	for _, f := range []string{"data", "tree", "response", "predictor"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newTreesCmd() *cobra.Command {
	var (
		dataPath, treesPath, outPath string
		response, predictor          string
		nTree                        int
		seed                         int64
		searchBound                  float64
	)
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Tree-uncertainty analysis over a candidate-tree collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			if nTree == 0 {
				nTree = cfg.Analysis.NTree
			}
			if seed == 0 {
				seed = cfg.Analysis.Seed
			}
			if searchBound == 0 {
				searchBound = cfg.Analysis.SearchBound
			}

			traits, err := tabular.NewDataReader(dataPath).ReadTraits()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(treesPath)
			if err != nil {
				return err
			}
			trees, err := phylo.ParseNewickAll(string(raw))
			if err != nil {
				return err
			}
			spec, err := model.NewRegressionSpec(response, predictor, model.LogisticMPLE,
				model.FitOptions{SearchBound: searchBound, Raw: cfg.Fitter.Options})
			if err != nil {
				return err
			}

			res, err := svc.RunTreeUncertainty(cmd.Context(), app.TreeUncertaintyRequest{
				Spec:   spec,
				Traits: traits,
				Trees:  trees,
				NTree:  nTree,
				Seed:   seed,
			})
			if err != nil {
				return err
			}
			fmt.Print(report.TreeText(res))
			if outPath != "" {
				if err := tabular.WriteTable(outPath, res.Estimates.Headers(), res.Estimates.Records()); err != nil {
					return err
				}
				log.Printf("[Sensi] estimates written to %s", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "trait table (.csv or .xlsx)")
	cmd.Flags().StringVar(&treesPath, "trees", "", "candidate trees, one Newick per line")
	cmd.Flags().StringVar(&response, "response", "", "binary response trait column")
	cmd.Flags().StringVar(&predictor, "predictor", "", "predictor trait column")
	cmd.Flags().IntVar(&nTree, "ntree", 0, "number of trees to draw (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for tree draws (default from config)")
	cmd.Flags().Float64Var(&searchBound, "search-bound", 0, "logistic search-space bound (default from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the estimates table (.csv or .xlsx)")
	for _, f := range []string{"data", "trees", "response", "predictor"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the sensitivity analyses over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			gin.SetMode(cfg.Server.GinMode)
			server := api.NewServer(svc)
			return server.Run(":" + cfg.Server.Port)
		},
	}
}

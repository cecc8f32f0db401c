package api

import (
	"fmt"

	"cargonav/internal/model"
)

func validateDataset(ds *model.DatasetIn) error {
	if len(ds.Airports) == 0 {
		return fmt.Errorf("dataset needs at least one airport")
	}
	for _, o := range ds.Orders {
		if o.Quantity <= 0 {
			return fmt.Errorf("order %d: quantity must be > 0", o.ID)
		}
	}
	for _, f := range ds.Flights {
		if f.Capacity <= 0 {
			return fmt.Errorf("flight %s: capacity must be > 0", f.Code)
		}
	}
	return nil
}

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if err := validateDataset(&req.Dataset); err != nil {
		return err
	}
	if req.MaxIterations < 0 {
		return fmt.Errorf("maxIterations must be >= 0")
	}
	if req.Patience < 0 {
		return fmt.Errorf("patience must be >= 0")
	}
	if req.TabuTenure < 0 {
		return fmt.Errorf("tabuTenure must be >= 0")
	}
	if len(req.ScoreWeights) > 0 && len(req.ScoreWeights) != 3 {
		return fmt.Errorf("scoreWeights must have length 3")
	}
	for _, w := range req.ScoreWeights {
		if w < 0 {
			return fmt.Errorf("score weights must be >= 0")
		}
	}
	if req.PerStopCost < 0 {
		return fmt.Errorf("perStopCost must be >= 0")
	}
	return nil
}

func validateSimulateRequest(req *model.SimulateRequest) error {
	if err := validateDataset(&req.Dataset); err != nil {
		return err
	}
	if req.CancelProb < 0 || req.CancelProb > 1 {
		return fmt.Errorf("cancelProb must be in [0,1]")
	}
	switch req.Scenario {
	case "", "daily", "weekly", "collapse":
	default:
		return fmt.Errorf("unknown scenario: %s", req.Scenario)
	}
	return nil
}

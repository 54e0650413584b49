package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/studiopipe/studiopipe/internal/domain"
)

// ABTestWorkflow runs one child pipeline per model variant against a shared
// base spec and ranks the outcomes. Variant failures become rows in the
// comparison rather than workflow failures; only all variants failing fails
// the test.
func ABTestWorkflow(ctx workflow.Context, input domain.ABTestInput) (*domain.Comparison, error) {
	logger := workflow.GetLogger(ctx)

	if err := input.Validate(); err != nil {
		return nil, err
	}
	type run struct {
		variant domain.ModelVariant
		future  workflow.ChildWorkflowFuture
	}

	runs := make([]run, 0, len(input.Variants))
	results := make([]domain.VariantResult, 0, len(input.Variants))
	for _, v := range input.Variants {
		spec, matched, err := domain.ApplyVariant(input.Base, v)
		if err != nil {
			return nil, err
		}
		if !matched {
			logger.Warn("variant matched no pipeline node, running base spec",
				"variant", v.ID, "target", v.Target)
		}

		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: fmt.Sprintf("%s-%s", input.TestID, v.ID),
		})
		runs = append(runs, run{
			variant: v,
			future:  workflow.ExecuteChildWorkflow(childCtx, PipelineWorkflow, spec.Pipeline()),
		})
	}

	// Await every child independently so one slow or failed variant never
	// blocks or poisons the rest.
	for _, r := range runs {
		var res domain.PipelineResult
		err := r.future.Get(ctx, &res)
		switch {
		case err != nil:
			logger.Warn("variant pipeline failed", "variant", r.variant.ID, "error", err)
			results = append(results, domain.FailedVariantResult(r.variant, err.Error()))
		case !res.Success:
			logger.Warn("variant pipeline unsuccessful", "variant", r.variant.ID, "error", res.Error)
			results = append(results, domain.FailedVariantResult(r.variant, res.Error))
		default:
			results = append(results, domain.NewVariantResult(r.variant, res))
		}
	}

	cmp, err := domain.Compare(input.TestID, results, input.Weights, domain.PlaceholderQuality)
	if err != nil {
		return nil, err
	}
	logger.Info("a/b test complete",
		"test_id", input.TestID,
		"variants", len(results),
		"winner", cmp.Winner,
	)
	return cmp, nil
}

// Package main provides the Axon compiler framework CLI.
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/axon-ml/axon/autodiff"
	"github.com/axon-ml/axon/expr"
	"github.com/axon-ml/axon/layout"
	"github.com/axon-ml/axon/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Axon Compiler Framework %s\n", version)
			return
		case "demo":
			if err := runDemo(); err != nil {
				fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Axon Compiler Framework - Tensor Program Analysis for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Run the layout-inference and autodiff demos")
}

func runDemo() error {
	log := funcr.New(func(prefix, args string) {
		fmt.Printf("[axon] %s %s\n", prefix, args)
	}, funcr.Options{Verbosity: 2})

	if err := layoutDemo(log.WithName("layout")); err != nil {
		return err
	}
	return autodiffDemo(log.WithName("autodiff"))
}

// layoutDemo runs the fixed-point pass over y = conv2d(x, w) with an
// inference function that pins the convolution to NCHW.
func layoutDemo(log logr.Logger) error {
	layout.RegisterInferFunc("demo.conv2d", func(layouts []expr.ValueLayout, types []expr.Type, numArgs int, attrs expr.Attrs, r *layout.Reporter) bool {
		want := attrs.Layout("data_layout")
		if !want.Defined() {
			return false
		}
		// Data input and result share the configured layout.
		r.AssignIndex(0, expr.TensorLayout{Layout: want})
		r.AssignIndex(numArgs, expr.TensorLayout{Layout: want})
		return true
	})

	dataTy := &expr.TensorType{Shape: tensor.Shape{1, 64, 56, 56}, DType: tensor.Float32}
	weightTy := &expr.TensorType{Shape: tensor.Shape{64, 64, 3, 3}, DType: tensor.Float32}
	x := expr.NewVar("x", dataTy)
	w := expr.NewVar("w", weightTy)
	y := expr.NewCall(expr.NewOpRef("demo.conv2d"), []expr.Node{x, w},
		expr.Attrs{"data_layout": "NCHW"}, dataTy)

	layouts, err := layout.CollectLayoutInfo(y)
	if err != nil {
		return err
	}
	log.Info("collected layouts",
		"x", fmt.Sprint(layouts[x]),
		"w", fmt.Sprint(layouts[w]),
		"conv", fmt.Sprint(layouts[y]),
	)
	return nil
}

// autodiffDemo differentiates z = x*y + x and evaluates the gradients.
func autodiffDemo(log logr.Logger) error {
	shape := tensor.Shape{2, 2}
	x := tensor.Placeholder("x", shape, tensor.Float32)
	y := tensor.Placeholder("y", shape, tensor.Float32)

	m, err := tensor.Compute("m", shape, func(i []*tensor.Var) tensor.Expr {
		return tensor.Mul(tensor.Read(x, i...), tensor.Read(y, i...))
	})
	if err != nil {
		return err
	}
	z, err := tensor.Compute("z", shape, func(i []*tensor.Var) tensor.Expr {
		return tensor.Add(tensor.Read(m, i...), tensor.Read(x, i...))
	})
	if err != nil {
		return err
	}

	head, err := tensor.Ones("head", shape)
	if err != nil {
		return err
	}
	res, err := autodiff.Differentiate(z,
		autodiff.WithInputs(x, y),
		autodiff.WithHead(head),
	)
	if err != nil {
		return err
	}

	bindings := map[*tensor.Tensor][]float64{
		x: {1, 2, 3, 4},
		y: {10, 20, 30, 40},
	}
	gradX, err := tensor.Evaluate(res.Result[0], bindings)
	if err != nil {
		return err
	}
	gradY, err := tensor.Evaluate(res.Result[1], bindings)
	if err != nil {
		return err
	}

	log.Info("adjoints",
		"dz/dx", fmt.Sprint(gradX), // y + 1
		"dz/dy", fmt.Sprint(gradY), // x
		"summands(x)", len(res.AdjointSummands[x]),
		"summands(y)", len(res.AdjointSummands[y]),
	)
	return nil
}

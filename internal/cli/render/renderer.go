package render

import "github.com/trebuchet-org/gasbench/internal/usecase"

type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*usecase.RunBenchmarkResult]   = (*GasRenderer)(nil)
	_ Renderer[*usecase.ManageForkResult]     = (*ForkRenderer)(nil)
	_ Renderer[*usecase.ListScenariosResult]  = (*ScenariosRenderer)(nil)
	_ Renderer[*usecase.EncodeCalldataResult] = (*EncodeRenderer)(nil)
)

// Package explain provides perturbation-based, model-agnostic attribution of
// a prediction to individual feature dimensions, in the kernel-weighted
// style: random feature coalitions are scored through the model and a
// regularized weighted least-squares fit recovers per-feature contributions.
package explain

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Defaults. The sample budget doubles as the cost control: the explainer's
// runtime is dominated by sampleBudget model evaluations.
const (
	DefaultSampleBudget = 100
	topK                = 10
	ridgeLambda         = 1e-3
	rngSeed             = 17

	// minKernelWeight floors the per-coalition weight. At wide feature
	// widths the Shapley kernel underflows to subnormals and the ridge
	// term ridgeLambda/w would overflow the gram diagonal to +Inf.
	minKernelWeight = 1e-9
)

// PredictFn scores a batch of feature rows and returns one fake-class
// probability per row.
type PredictFn func(X *mat.Dense) ([]float64, error)

// Attribution holds the top feature dimensions ranked by descending absolute
// contribution. Indices and Values share ordering: index i corresponds to
// value i.
type Attribution struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Kernel attributes the prediction for row to its feature dimensions.
//
// When background is nil, the row itself is replicated five times as a
// minimal-variance placeholder background. That is a known fidelity
// limitation, not a representative baseline: attributions against it are
// weaker than against a real background sample.
func Kernel(predict PredictFn, row []float64, background *mat.Dense, sampleBudget int) (*Attribution, error) {
	d := len(row)
	if d == 0 {
		return nil, errors.New("cannot explain an empty feature vector")
	}
	if sampleBudget <= 0 {
		sampleBudget = DefaultSampleBudget
	}

	if background == nil {
		background = mat.NewDense(5, d, nil)
		for i := 0; i < 5; i++ {
			copy(background.RawRowView(i), row)
		}
	}
	if _, cols := background.Dims(); cols != d {
		return nil, errors.New("background width does not match feature vector")
	}
	base := columnMeans(background)

	baseline, err := predict(mat.NewDense(1, d, append([]float64(nil), base...)))
	if err != nil {
		return nil, err
	}

	// Sample coalitions: masked-out features are replaced by the
	// background mean, everything is scored in one batched call.
	rng := rand.New(rand.NewSource(rngSeed))
	masks := mat.NewDense(sampleBudget, d, nil)
	perturbed := mat.NewDense(sampleBudget, d, nil)
	weights := make([]float64, sampleBudget)
	for i := 0; i < sampleBudget; i++ {
		mask := masks.RawRowView(i)
		x := perturbed.RawRowView(i)
		size := 0
		for j := 0; j < d; j++ {
			if rng.Intn(2) == 1 {
				mask[j] = 1
				x[j] = row[j]
				size++
			} else {
				x[j] = base[j]
			}
		}
		weights[i] = kernelWeight(d, size)
	}

	scores, err := predict(perturbed)
	if err != nil {
		return nil, err
	}
	deltas := make([]float64, sampleBudget)
	for i, s := range scores {
		deltas[i] = s - baseline[0]
	}

	phi, err := solveWeighted(masks, deltas, weights)
	if err != nil {
		return nil, err
	}

	return topContributions(phi), nil
}

// kernelWeight is the Shapley kernel for a coalition of the given size. The
// degenerate empty and full coalitions carry a large finite weight instead of
// the theoretical infinity.
func kernelWeight(d, size int) float64 {
	if size == 0 || size == d {
		return 1e6
	}
	return float64(d-1) / (binomial(d, size) * float64(size*(d-size)))
}

func binomial(n, k int) float64 {
	lg, _ := math.Lgamma(float64(n + 1))
	lgk, _ := math.Lgamma(float64(k + 1))
	lgnk, _ := math.Lgamma(float64(n - k + 1))
	v := math.Exp(lg - lgk - lgnk)
	if math.IsInf(v, 0) {
		return math.MaxFloat64
	}
	return v
}

// solveWeighted fits contributions phi minimizing
// sum_i w_i (y_i - z_i . phi)^2 + lambda ||phi||^2. The solve runs in the
// sample space (budget x budget), so a wide tf-idf feature space stays cheap:
// phi = Z^T (Z Z^T + lambda W^-1)^-1 y.
func solveWeighted(Z *mat.Dense, y, w []float64) ([]float64, error) {
	m, d := Z.Dims()

	var gram mat.Dense
	gram.Mul(Z, Z.T())
	for i := 0; i < m; i++ {
		wi := w[i]
		if wi < minKernelWeight {
			wi = minKernelWeight
		}
		gram.Set(i, i, gram.At(i, i)+ridgeLambda/wi)
	}

	alpha := mat.NewVecDense(m, nil)
	if err := alpha.SolveVec(&gram, mat.NewVecDense(m, y)); err != nil {
		return nil, err
	}

	phi := make([]float64, d)
	for j := 0; j < d; j++ {
		var sum float64
		for i := 0; i < m; i++ {
			sum += Z.At(i, j) * alpha.AtVec(i)
		}
		phi[j] = sum
	}
	return phi, nil
}

func topContributions(phi []float64) *Attribution {
	indices := make([]int, len(phi))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return math.Abs(phi[indices[a]]) > math.Abs(phi[indices[b]])
	})

	k := topK
	if len(indices) < k {
		k = len(indices)
	}

	out := &Attribution{
		Indices: make([]int, k),
		Values:  make([]float64, k),
	}
	for i := 0; i < k; i++ {
		out.Indices[i] = indices[i]
		out.Values[i] = phi[indices[i]]
	}
	return out
}

func columnMeans(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		means[j] = sum / float64(rows)
	}
	return means
}

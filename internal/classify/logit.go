package classify

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/boroughlab/incident-cli/internal/model"
)

const (
	maxIterations = 50
	tolerance     = 1e-8

	// probClamp keeps fitted probabilities away from 0/1 so the IRLS
	// weights stay finite under quasi-separation.
	probClamp = 1e-9
)

// Model is a fitted logistic regression of occurrence on borough identity.
// The reference borough is absorbed into the intercept; every other
// coefficient is a log-odds delta relative to it.
type Model struct {
	Intercept  float64                   `json:"intercept"`
	Coef       map[model.Borough]float64 `json:"coefficients"`
	Reference  model.Borough             `json:"reference"`
	Iterations int                       `json:"iterations"`
}

// Fit estimates the model from training rows by iteratively reweighted
// least squares. The design matrix is an intercept column plus one dummy
// column per non-reference borough.
func Fit(train []model.DailyOccurrence) (*Model, error) {
	if len(train) == 0 {
		return nil, eris.New("classify: empty training set")
	}

	boroughs := model.AllBoroughs()
	cols := make(map[model.Borough]int, len(boroughs)-1)
	col := 1
	for _, b := range boroughs {
		if b == model.ReferenceBorough {
			continue
		}
		cols[b] = col
		col++
	}
	p := col // intercept + dummies

	n := len(train)
	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, row := range train {
		x.Set(i, 0, 1)
		if c, ok := cols[row.Borough]; ok {
			x.Set(i, c, 1)
		}
		if row.Occurred {
			y.SetVec(i, 1)
		}
	}

	beta := mat.NewVecDense(p, nil)
	var iterations int

	for iter := 0; iter < maxIterations; iter++ {
		iterations = iter + 1

		// p_i = sigmoid(x_i · beta); W = diag(p_i (1 - p_i)).
		prob := mat.NewVecDense(n, nil)
		prob.MulVec(x, beta)
		w := mat.NewVecDense(n, nil)
		resid := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			pi := sigmoid(prob.AtVec(i))
			pi = math.Min(math.Max(pi, probClamp), 1-probClamp)
			w.SetVec(i, pi*(1-pi))
			resid.SetVec(i, y.AtVec(i)-pi)
		}

		// Newton step: (X'WX) delta = X'(y - p).
		xtwx := mat.NewDense(p, p, nil)
		wx := mat.NewDense(n, p, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < p; j++ {
				wx.Set(i, j, w.AtVec(i)*x.At(i, j))
			}
		}
		xtwx.Mul(x.T(), wx)

		xtr := mat.NewVecDense(p, nil)
		xtr.MulVec(x.T(), resid)

		delta := mat.NewVecDense(p, nil)
		if err := delta.SolveVec(xtwx, xtr); err != nil {
			// Quasi-separated boroughs drive their weights toward zero and
			// the system toward ill-conditioning; the approximate step is
			// still usable. Only a truly singular system is fatal.
			if _, ok := err.(mat.Condition); !ok {
				return nil, eris.Wrap(err, "classify: singular IRLS system")
			}
		}

		beta.AddVec(beta, delta)

		if mat.Norm(delta, math.Inf(1)) < tolerance {
			break
		}
	}

	m := &Model{
		Intercept:  beta.AtVec(0),
		Coef:       make(map[model.Borough]float64, len(cols)),
		Reference:  model.ReferenceBorough,
		Iterations: iterations,
	}
	for b, c := range cols {
		m.Coef[b] = beta.AtVec(c)
	}

	zap.L().Debug("classify: model fitted",
		zap.Float64("intercept", m.Intercept),
		zap.Int("iterations", m.Iterations),
	)

	return m, nil
}

// Probability returns the fitted occurrence probability for a borough.
func (m *Model) Probability(b model.Borough) float64 {
	return sigmoid(m.Intercept + m.Coef[b])
}

// Predict thresholds the fitted probability into a boolean occurrence.
func (m *Model) Predict(b model.Borough, threshold float64) bool {
	return m.Probability(b) >= threshold
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

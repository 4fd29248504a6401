package forecast

// LinearRegression fits value against the integer time index 0..n-1.
// Fewer than two points, or a zero denominator, yields a flat line at the
// mean. R² is 0 when the series has no variance.
func LinearRegression(data []TimePoint) Regression {
	return linearRegression(values(data))
}

func linearRegression(y []float64) Regression {
	if len(y) == 0 {
		return Regression{}
	}
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return Regression{Intercept: sumY / n}
	}
	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n
	reg := Regression{Slope: slope, Intercept: intercept}

	mean := sumY / n
	var ssTot, ssRes float64
	for i, v := range y {
		d := v - mean
		ssTot += d * d
		e := v - reg.Predict(float64(i))
		ssRes += e * e
	}
	if ssTot > 0 {
		reg.R2 = 1 - ssRes/ssTot
	}
	return reg
}

func linearFit(y []float64) Fit {
	reg := linearRegression(y)
	fitted := make([]float64, len(y))
	for i := range y {
		fitted[i] = reg.Predict(float64(i))
	}
	return Fit{
		Method:     MethodLinear,
		Fitted:     fitted,
		Regression: &reg,
	}
}

// Vihrea - Sustainability Cost Estimator
// Annotate. Estimate. Improve.
package main

func main() {
	Execute()
}

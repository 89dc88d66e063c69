package model

import "testing"

func TestBuilderComposesModel(t *testing.T) {
	m := New().
		SetName("CNN1").
		SetOptimizer("adam").
		SetLearningRate(0.001).
		AddLayer(NewLayer("conv1").SetUnits(32).SetActivation("relu")).
		AddLayer(NewLayer("dense1").SetUnits(10).SetActivation("softmax")).
		SetConfig("batch_size", 64)

	if m.Name != "CNN1" || m.Optimizer != "adam" {
		t.Fatal("scalar setters must pass through")
	}
	if len(m.Layers) != 2 || m.Layers[0].Units != 32 {
		t.Fatal("layers must be appended in order")
	}
	if m.Config["batch_size"] != 64 {
		t.Fatal("config entries must be stored")
	}
}

func TestFitRunsCallbacks(t *testing.T) {
	epochs := 0
	m := New().AddCallback(NewCallback("counter").SetOnEpochEnd(func(epoch int) {
		epochs++
	}))

	m.Fit(3)
	if epochs != 3 {
		t.Fatalf("expected 3 callback runs, got %d", epochs)
	}
}

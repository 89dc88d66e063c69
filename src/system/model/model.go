// Package model provides a small fluent builder for the training model
// objects a vocabulary session typically extracts from. It exists so
// examples and tests have a realistic host object without depending on
// an actual learning framework.
package model

type Model struct {
	Name         string
	Optimizer    string
	LearningRate float64
	Layers       []*Layer
	Callbacks    []*Callback
	Config       map[string]interface{}
}

func New() *Model {
	return &Model{
		Layers:    make([]*Layer, 0),
		Callbacks: make([]*Callback, 0),
		Config:    make(map[string]interface{}),
	}
}

func (m *Model) SetName(name string) *Model {
	m.Name = name
	return m
}

func (m *Model) SetOptimizer(optimizer string) *Model {
	m.Optimizer = optimizer
	return m
}

func (m *Model) SetLearningRate(rate float64) *Model {
	m.LearningRate = rate
	return m
}

func (m *Model) AddLayer(layer *Layer) *Model {
	m.Layers = append(m.Layers, layer)
	return m
}

func (m *Model) AddCallback(callback *Callback) *Model {
	m.Callbacks = append(m.Callbacks, callback)
	return m
}

func (m *Model) SetConfig(key string, value interface{}) *Model {
	m.Config[key] = value
	return m
}

func (m *Model) Fit(epochs int) {
	for _, callback := range m.Callbacks {
		for epoch := 0; epoch < epochs; epoch++ {
			if callback.OnEpochEnd != nil {
				callback.OnEpochEnd(epoch)
			}
		}
	}
}

func (m *Model) Predict(batch []float64) []float64 {
	out := make([]float64, len(batch))
	copy(out, batch)
	return out
}

type Layer struct {
	Name       string
	Units      int
	Activation string
	Params     map[string]float64
}

func NewLayer(name string) *Layer {
	return &Layer{
		Name:   name,
		Params: make(map[string]float64),
	}
}

func (l *Layer) SetParam(key string, value float64) *Layer {
	l.Params[key] = value
	return l
}

func (l *Layer) SetUnits(units int) *Layer {
	l.Units = units
	return l
}

func (l *Layer) SetActivation(activation string) *Layer {
	l.Activation = activation
	return l
}

type Callback struct {
	Name       string
	OnEpochEnd func(epoch int)
}

func NewCallback(name string) *Callback {
	return &Callback{
		Name: name,
	}
}

func (c *Callback) SetOnEpochEnd(fn func(epoch int)) *Callback {
	c.OnEpochEnd = fn
	return c
}

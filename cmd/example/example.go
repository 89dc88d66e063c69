package main

import (
	"fmt"
	"log"
	"os"

	"github.com/voodooEntity/gits"

	"github.com/voodooEntity/vocabrain"
	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/memory"
	"github.com/voodooEntity/vocabrain/src/system/model"
	"github.com/voodooEntity/vocabrain/src/system/relations"
)

func main() {
	logger := log.New(os.Stdout, "", 0)

	// create base instance. ident names the memory mirror, the default
	// words are free vocabulary available from the start.
	vb := vocabrain.New(vocabrain.Settings{
		Ident:          "ExampleSession",
		LogLevel:       archivist.LEVEL_INFO,
		Logger:         logger,
		DynamicUpdates: true,
		DefaultWords:   []string{"epoch", "loss", "accuracy"},
	})

	// build a model and extract its vocabulary
	m := model.New().
		SetName("CNN1").
		SetOptimizer("adam").
		SetLearningRate(0.001).
		AddLayer(model.NewLayer("conv1").SetUnits(32).SetActivation("relu")).
		AddLayer(model.NewLayer("dense1").SetUnits(10).SetActivation("softmax")).
		AddCallback(model.NewCallback("earlyStopping"))
	root := vb.ExtractModel(m)

	// mutate the model through its proxy, the graph follows along
	proxy := vb.Track(m, root)
	if proxy != nil {
		if err := proxy.Set("Optimizer", "sgd"); err != nil {
			logger.Println("mutation failed:", err)
		}
	}

	// get an observer instance. the callback runs once the vocabulary
	// has settled and the mirror was synced.
	obsi := vb.GetObserverInstance(func(mi *memory.Memory) {
		layers := mi.Related("CNN1", relations.HasLayer)
		logger.Println("Layers of CNN1:", layers)
	})

	// register a tick function
	fn := func(gits *gits.Gits, logger *archivist.Archivist) {
		logger.Info("yes i tick")
	}
	obsi.RegisterTickFunction(&fn)
	obsi.SetTickRate(20)

	// blocking while the vocabulary is still changing
	obsi.Loop()

	// the mirror is the default gits instance, query it directly
	qry := gits.NewQuery().Read("Word")
	res := gits.GetDefault().Query().Execute(qry)
	fmt.Println(fmt.Sprintf("%+v", res))
}

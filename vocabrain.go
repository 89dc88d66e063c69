// Package vocabrain extracts the vocabulary of live objects into a
// typed word graph, keeps that graph in sync with later mutations and
// mirrors it into a gits instance for querying.
package vocabrain

import (
	"github.com/voodooEntity/gitsapi"

	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/extractor"
	"github.com/voodooEntity/vocabrain/src/system/interfaces"
	"github.com/voodooEntity/vocabrain/src/system/lexicon"
	"github.com/voodooEntity/vocabrain/src/system/memory"
	"github.com/voodooEntity/vocabrain/src/system/model"
	"github.com/voodooEntity/vocabrain/src/system/observer"
	"github.com/voodooEntity/vocabrain/src/system/relations"
	"github.com/voodooEntity/vocabrain/src/system/util"
	"github.com/voodooEntity/vocabrain/src/system/watcher"
)

type Settings struct {
	Ident           string
	Logger          interfaces.LoggerInterface
	LogLevel        int
	DebugLevel      int
	DynamicUpdates  bool
	MaxDepth        int
	MaxContainerLen int
	DefaultWords    []string
	ApiActive       bool
}

type Vocabrain struct {
	settings  Settings
	log       *archivist.Archivist
	graph     *lexicon.VocabGraph
	watcher   *watcher.Watcher
	extractor *extractor.Extractor
	memory    *memory.Memory
}

// New composes a vocabulary session from the given settings. An empty
// ident is replaced by a random one, it names the memory mirror.
func New(settings Settings) *Vocabrain {
	if settings.Ident == "" {
		settings.Ident = util.RandomIdent(10)
	}

	logger := archivist.New(&archivist.Config{
		Logger:     settings.Logger,
		LogLevel:   settings.LogLevel,
		DebugLevel: settings.DebugLevel,
	})

	graph := lexicon.New(settings.DefaultWords...)
	watcherInstance := watcher.New(graph, logger)
	extractorInstance := extractor.New(graph, watcherInstance, logger, extractor.Config{
		MaxDepth:        settings.MaxDepth,
		MaxContainerLen: settings.MaxContainerLen,
		DynamicUpdates:  settings.DynamicUpdates,
	})
	// proxies re-enter the extractor when a mutation introduces a
	// structural value
	watcherInstance.SetDescend(func(obj interface{}, context *lexicon.WordNode) {
		extractorInstance.Extract(obj, context)
	})

	memoryInstance := memory.New(graph, logger, settings.Ident)

	if settings.ApiActive {
		go gitsapi.Start()
	}

	logger.Info("Vocabrain instance created", settings.Ident)

	return &Vocabrain{
		settings:  settings,
		log:       logger,
		graph:     graph,
		watcher:   watcherInstance,
		extractor: extractorInstance,
		memory:    memoryInstance,
	}
}

// Extract walks obj and records its vocabulary under a fresh free node
// carrying contextWord. The node is returned for later lookups and
// tracking.
func (v *Vocabrain) Extract(obj interface{}, contextWord string) *lexicon.WordNode {
	root := v.graph.AddNode(contextWord, nil, nil)
	v.extractor.Extract(obj, root)
	return root
}

// ExtractModel seeds the graph with a model's layer and callback names
// before walking the model itself. Layer names are expected unique, a
// duplicate still extracts but makes value lookups ambiguous.
func (v *Vocabrain) ExtractModel(m *model.Model) *lexicon.WordNode {
	root := v.graph.AddNode(m.Name, nil, nil)

	seen := make(map[string]bool)
	for _, layer := range m.Layers {
		if seen[layer.Name] {
			v.log.Warning("Duplicate layer name in model, lookups by value become ambiguous", layer.Name)
		}
		seen[layer.Name] = true
		layerNode := v.graph.AddNode(layer.Name, root, relations.IsLayerOf)
		v.extractor.Extract(layer, layerNode)
	}
	for _, callback := range m.Callbacks {
		callbackNode := v.graph.AddNode(callback.Name, root, relations.IsCallbackOf)
		v.extractor.Extract(callback, callbackNode)
	}

	v.extractor.Extract(m, root)
	return root
}

// Track wraps host in a watcher proxy bound to context, nil for hosts
// that cannot be proxied.
func (v *Vocabrain) Track(host interface{}, context *lexicon.WordNode) *watcher.Proxy {
	return v.watcher.Install(host, context)
}

// Sync mirrors the current graph into gits.
func (v *Vocabrain) Sync() bool {
	return v.memory.Sync()
}

// GetObserverInstance returns an observer that blocks until the graph
// settles, then syncs and runs the provided callback.
func (v *Vocabrain) GetObserverInstance(cb func(memoryInstance *memory.Memory)) *observer.Observer {
	return observer.New(v.graph, v.memory, cb, v.log)
}

func (v *Vocabrain) Graph() *lexicon.VocabGraph {
	return v.graph
}

func (v *Vocabrain) Memory() *memory.Memory {
	return v.memory
}

// PendingDocLearning exposes the callables whose parameter names still
// need to be learned from documentation.
func (v *Vocabrain) PendingDocLearning() []string {
	return v.extractor.PendingDocLearning()
}

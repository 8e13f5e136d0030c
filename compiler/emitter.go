package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mi-Lis/MLCanvas/graph"
)

// Emission defaults applied when a node's params omit a value.
const (
	defaultLR        = "1e-3"
	defaultEpochs    = 3
	defaultBatchSize = 64
	defaultTrainFrac = "0.8"
	defaultValFrac   = "0.1"
	defaultTestFrac  = "0.1"
)

// emitter renders a validated, ordered graph into a training script. The
// phase order is fixed regardless of where a node sits topologically;
// only the order within the data and transform groups follows the
// dependency order. Output is byte-identical across runs for the same
// graph: users diff and persist the generated script.
type emitter struct {
	b     strings.Builder
	g     *graph.Graph
	nodes []graph.Node // all nodes, dependency order
}

func emit(g *graph.Graph, order []string) string {
	byID := make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	e := &emitter{g: g}
	for _, id := range order {
		if n, ok := byID[id]; ok {
			e.nodes = append(e.nodes, n)
		}
	}

	e.header()
	e.dataStages()
	e.transformStages()
	e.splitStage()
	e.modelStage()
	e.lossStage()
	e.optimizerStage()
	e.trainerStage()
	e.metricStage()
	e.trailer()
	return e.b.String()
}

// group returns the nodes of the given type in dependency order.
func (e *emitter) group(t graph.NodeType) []graph.Node {
	var out []graph.Node
	for _, n := range e.nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// first returns the first node of the given type in dependency order.
// Extra nodes of singleton stage types are ignored without error.
func (e *emitter) first(t graph.NodeType) (graph.Node, bool) {
	for _, n := range e.nodes {
		if n.Type == t {
			return n, true
		}
	}
	return graph.Node{}, false
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.b, format+"\n", args...)
}

// paramsComment renders a node's params as a deterministic one-line JSON
// comment. encoding/json sorts map keys, so the dump is stable.
func (e *emitter) paramsComment(p graph.Params) {
	if len(p) == 0 {
		e.line("# params: {}")
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		// Params are JSON-decoded values, so this cannot happen for
		// snapshots; guard anyway for programmatically built graphs.
		e.line("# params: <unserializable>")
		return
	}
	e.line("# params: %s", data)
}

func (e *emitter) projectName() string {
	if e.g.ProjectName == "" {
		return "pipeline"
	}
	return e.g.ProjectName
}

func (e *emitter) header() {
	e.line("# Training script for project %q.", e.projectName())
	e.line("# Generated by MLCanvas. Edits are overwritten on the next build.")
	e.line("import torch")
	e.line("import torch.nn as nn")
	e.line("import torch.optim as optim")
	e.line("from torch.utils.data import DataLoader, random_split")
	e.line("")
	e.line("device = torch.device(\"cuda\" if torch.cuda.is_available() else \"cpu\")")
}

func (e *emitter) dataStages() {
	for i, n := range e.group(graph.NodeTypeData) {
		ident := DeriveIdentifier(n.Label, "dataset", i)
		e.line("")
		e.line("# data stage %q", displayName(n))
		e.paramsComment(n.Params)
		e.line("%s = None  # replace with your dataset", ident)
	}
}

func (e *emitter) transformStages() {
	for i, n := range e.group(graph.NodeTypeTransform) {
		ident := DeriveIdentifier(n.Label, "transform", i)
		e.line("")
		e.line("# transform stage %q", displayName(n))
		e.paramsComment(n.Params)
		e.line("%s = lambda x: x  # replace with your transform", ident)
	}
}

// baseDataset is the identifier the split operates on: the first data
// stage in dependency order, or a bare "dataset" placeholder.
func (e *emitter) baseDataset() string {
	if n, ok := e.first(graph.NodeTypeData); ok {
		return DeriveIdentifier(n.Label, "dataset", 0)
	}
	return "dataset"
}

func (e *emitter) splitStage() {
	n, ok := e.first(graph.NodeTypeSplit)
	if !ok {
		return
	}
	train := floatLiteral(n.Params, "train", defaultTrainFrac)
	val := floatLiteral(n.Params, "val", defaultValFrac)
	test := floatLiteral(n.Params, "test", defaultTestFrac)
	shuffle := boolParam(n.Params, "shuffle", true)
	e.line("")
	e.line("# split stage: train=%s, val=%s, test=%s, shuffle=%s", train, val, test, pyBool(shuffle))
	e.line("train_set, val_set, test_set = random_split(%s, [%s, %s, %s])", e.baseDataset(), train, val, test)
}

func (e *emitter) modelStage() {
	n, ok := e.first(graph.NodeTypeModel)
	if !ok {
		return
	}
	e.line("")
	e.line("# model stage %q", displayName(n))
	e.paramsComment(n.Params)
	e.line("class Net(nn.Module):")
	e.line("    def __init__(self):")
	e.line("        super().__init__()")
	e.line("        self.layers = nn.Sequential(")
	e.line("            nn.Flatten(),")
	e.line("            nn.Linear(784, 128),")
	e.line("            nn.ReLU(),")
	e.line("            nn.Linear(128, 10),")
	e.line("        )")
	e.line("")
	e.line("    def forward(self, x):")
	e.line("        return self.layers(x)")
	e.line("")
	e.line("model = Net().to(device)")
}

func (e *emitter) lossStage() {
	if _, ok := e.first(graph.NodeTypeLoss); !ok {
		return
	}
	e.line("")
	e.line("# loss stage")
	e.line("criterion = nn.CrossEntropyLoss()")
}

func (e *emitter) optimizerStage() {
	n, ok := e.first(graph.NodeTypeOptimizer)
	if !ok {
		return
	}
	e.line("")
	e.line("# optimizer stage")
	e.line("optimizer = optim.Adam(model.parameters(), lr=%s)", floatLiteral(n.Params, "lr", defaultLR))
}

func (e *emitter) trainerStage() {
	n, ok := e.first(graph.NodeTypeTrainer)
	if !ok {
		return
	}
	batch := intParam(n.Params, "batch_size", defaultBatchSize)
	epochs := intParam(n.Params, "epochs", defaultEpochs)
	e.line("")
	e.line("# trainer stage")
	e.line("train_loader = DataLoader(train_set, batch_size=%d, shuffle=True)", batch)
	e.line("val_loader = DataLoader(val_set, batch_size=%d)", batch)
	e.line("")
	e.line("for epoch in range(%d):", epochs)
	e.line("    model.train()")
	e.line("    running_loss = 0.0")
	e.line("    for inputs, targets in train_loader:")
	e.line("        inputs, targets = inputs.to(device), targets.to(device)")
	e.line("        optimizer.zero_grad()")
	e.line("        outputs = model(inputs)")
	e.line("        loss = criterion(outputs, targets)")
	e.line("        loss.backward()")
	e.line("        optimizer.step()")
	e.line("        running_loss += loss.item()")
	e.line("    print(f\"epoch {epoch + 1}/%d: loss={running_loss / max(len(train_loader), 1):.4f}\")", epochs)
}

// metricStage is gated on at least one metric node being present. The
// accuracy computation guards the empty validation set and reports 0.0.
func (e *emitter) metricStage() {
	if _, ok := e.first(graph.NodeTypeMetric); !ok {
		return
	}
	e.line("")
	e.line("# evaluation")
	e.line("model.eval()")
	e.line("correct = 0")
	e.line("total = 0")
	e.line("with torch.no_grad():")
	e.line("    for inputs, targets in val_loader:")
	e.line("        inputs, targets = inputs.to(device), targets.to(device)")
	e.line("        outputs = model(inputs)")
	e.line("        predicted = outputs.argmax(dim=1)")
	e.line("        correct += (predicted == targets).sum().item()")
	e.line("        total += targets.size(0)")
	e.line("accuracy = correct / total if total > 0 else 0.0")
	e.line("print(f\"validation accuracy: {accuracy:.4f}\")")
}

func (e *emitter) trailer() {
	e.line("")
	e.line("torch.save(model.state_dict(), %q)", e.projectName()+".pt")
}

// displayName is the label shown in generated comments, falling back to
// the node id for unlabeled nodes.
func displayName(n graph.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

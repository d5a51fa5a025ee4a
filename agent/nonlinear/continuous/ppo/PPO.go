// Package ppo implements the Proximal Policy Optimization algorithm
// with a clipped surrogate objective for continuous action spaces.
//
// A PPO system maintains two policies and two critics. The behaviour
// policy and behaviour critic use a batch size of 1 and are used
// during environment interaction to select actions and estimate
// action values. The training policy and training critic use the
// update batch size and are the networks actually updated by
// TrainStep. After every update, the behaviour networks are set to
// the training networks.
//
// Transitions are accumulated in a rollout buffer with Collect.
// Once the buffer has filled and FinalizeRollout has computed the
// generalized advantage estimates, TrainStep samples a batch and
// performs one gradient step on the clipped surrogate objective
//
//	L = -E[min(ρ·A, clip(ρ, 1-ε, 1+ε)·A)] - c·E[H]
//
// where ρ is the probability ratio between the training and behaviour
// policies, A the advantage estimate, and H the policy entropy, and
// one gradient step on the mean squared error of the critic against
// the λ-returns. Gradients are averaged across communicator ranks
// before being applied, so that all ranks take identical steps.
package ppo

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goppo/agent"
	"github.com/samuelfneumann/goppo/agent/nonlinear/continuous/policy"
	"github.com/samuelfneumann/goppo/comm"
	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/model"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/report"
	"github.com/samuelfneumann/goppo/rollout"
	"github.com/samuelfneumann/goppo/utils/matutils"
	"github.com/samuelfneumann/goppo/utils/op"
)

// Checkpoint filenames within a checkpoint directory
const (
	actorCheckpoint  string = "actor.bin"
	criticCheckpoint string = "critic.bin"
)

// advantageOffset is added to the standard deviation when normalizing
// advantages so that a batch of identical advantages does not divide
// by zero
const advantageOffset float64 = 1e-8

// PPO satisfies the on-policy training system contract
var _ agent.OnPolicySystem = (*PPO)(nil)

// PPO implements the Proximal Policy Optimization algorithm for
// continuous action spaces. Policies are Gaussian policies
// parameterized by tree MLPs, and critics are action value functions.
type PPO struct {
	// Action selection
	behaviour       *policy.GaussianTreeMLP
	behaviourCritic network.NeuralNet
	behaviourVM     G.VM
	behaviourStates *G.Node
	behaviourAction *G.Node

	// Policy training
	trainPolicy *policy.GaussianTreeMLP
	policyVM    G.VM
	advantages  *G.Node
	oldLogProbs *G.Node

	surrogateLossVal G.Value
	klVal            G.Value
	clipFractionVal  G.Value

	// Critic training
	trainCritic   network.NeuralNet
	criticVM      G.VM
	criticStates  *G.Node
	criticActions *G.Node
	criticTargets *G.Node
	valueLossVal  G.Value

	actor  *model.Pack
	critic *model.Pack

	buffer *rollout.Buffer

	comm   comm.Communicator
	config Config

	features   int
	actionDims int

	// Diagnostics from the last completed TrainStep
	klDivergence float64
	clipFraction float64

	logger zerolog.Logger
}

// New creates and returns a new PPO system acting in environments
// with the same specifications as env. If c is nil, a single-process
// communicator is used. The reporter may be nil, in which case
// training metrics are logged but not recorded.
func New(env environment.Environment, config Config, c comm.Communicator,
	reporter report.Reporter, logger zerolog.Logger,
	seed int64) (*PPO, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if c == nil {
		c = comm.NewLocal()
	}

	features := env.ObservationSpec().Shape.Len()
	actionDims := env.ActionSpec().Shape.Len()
	init := config.InitWFn.InitWFn()

	// Create the behaviour policy for action selection
	behaviour, err := policy.NewGaussianTreeMLP(
		env,
		1,
		G.NewGraph(),
		config.PolicyRootLayers,
		config.PolicyRootBiases,
		config.PolicyRootActivations,
		config.PolicyLeafLayers,
		config.PolicyLeafBiases,
		config.PolicyLeafActivations,
		init,
		uint64(seed),
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour policy: %v",
			err)
	}

	// Create the training policy
	trainPolicy, err := policy.NewGaussianTreeMLP(
		env,
		config.BatchSize,
		G.NewGraph(),
		config.PolicyRootLayers,
		config.PolicyRootBiases,
		config.PolicyRootActivations,
		config.PolicyLeafLayers,
		config.PolicyLeafBiases,
		config.PolicyLeafActivations,
		init,
		uint64(seed),
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create training policy: %v",
			err)
	}
	if err := behaviour.Network().Set(trainPolicy.Network()); err != nil {
		return nil, fmt.Errorf("new: could not synchronize policies: %v", err)
	}

	// Construct the clipped surrogate objective on the training
	// policy's graph
	gPolicy := trainPolicy.Network().Graph()
	advantages := G.NewVector(
		gPolicy,
		tensor.Float64,
		G.WithName("Advantages"),
		G.WithShape(config.BatchSize),
	)
	oldLogProbs := G.NewVector(
		gPolicy,
		tensor.Float64,
		G.WithName("Behaviour Policy Log Probabilities"),
		G.WithShape(config.BatchSize),
	)

	logRatio := G.Must(G.Sub(trainPolicy.LogPdfNode(), oldLogProbs))
	ratio := G.Must(G.Exp(logRatio))

	unclipped := G.Must(G.HadamardProd(ratio, advantages))
	clippedRatio, err := op.Clip(ratio, 1-config.Epsilon, 1+config.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("new: could not clip policy ratio: %v", err)
	}
	clipped := G.Must(G.HadamardProd(clippedRatio, advantages))

	surrogate, err := op.Min(unclipped, clipped)
	if err != nil {
		return nil, fmt.Errorf("new: could not construct surrogate "+
			"objective: %v", err)
	}
	surrogateLoss := G.Must(G.Neg(G.Must(G.Mean(surrogate))))

	entropy := G.Must(G.Mean(trainPolicy.EntropyNode()))
	entropyCoeff := G.NewScalar(
		gPolicy,
		G.Float64,
		G.WithValue(config.EntropyLossCoeff),
		G.WithName("Entropy Loss Coefficient"),
	)
	policyLoss := G.Must(G.Sub(surrogateLoss,
		G.Must(G.Mul(entropyCoeff, entropy))))

	// Estimate the KL divergence between the behaviour and training
	// policies and the fraction of ratios that were clipped. Neither
	// contributes to the gradient.
	one := G.NewScalar(
		gPolicy,
		G.Float64,
		G.WithValue(1.0),
		G.WithName("Unit Ratio"),
	)
	kl := G.Must(G.Mean(G.Must(G.Sub(G.Must(G.Sub(ratio, one)), logRatio))))

	clipRadius := G.NewScalar(
		gPolicy,
		G.Float64,
		G.WithValue(config.Epsilon),
		G.WithName("Clipping Radius"),
	)
	deviation := G.Must(G.Abs(G.Must(G.Sub(ratio, one))))
	clipFraction := G.Must(G.Mean(G.Must(G.Gt(deviation, clipRadius, true))))

	// Create the training critic and its mean squared error loss
	trainCritic, criticStates, criticActions, err := newCritic(
		G.NewGraph(), config.BatchSize, features, actionDims, config, init,
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create training critic: %v",
			err)
	}

	criticTargets := G.NewMatrix(
		trainCritic.Graph(),
		tensor.Float64,
		G.WithShape(trainCritic.Prediction()[0].Shape()...),
		G.WithName("Critic Update Target"),
	)

	valueLoss := G.Must(G.Sub(trainCritic.Prediction()[0], criticTargets))
	valueLoss = G.Must(G.Square(valueLoss))
	valueLoss = G.Must(G.Mean(valueLoss))

	valueLossCoeff := G.NewScalar(
		trainCritic.Graph(),
		G.Float64,
		G.WithValue(config.ValueLossCoeff),
		G.WithName("Value Loss Coefficient"),
	)
	scaledValueLoss := G.Must(G.Mul(valueLossCoeff, valueLoss))

	// Create the behaviour critic for action value prediction
	behaviourCritic, behaviourStates, behaviourAction, err := newCritic(
		G.NewGraph(), 1, features, actionDims, config, init,
	)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour critic: %v",
			err)
	}
	if err := behaviourCritic.Set(trainCritic); err != nil {
		return nil, fmt.Errorf("new: could not synchronize critics: %v", err)
	}

	buffer, err := rollout.New(config.BufferCapacity, features, actionDims,
		config.Gamma, config.GAELambda, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create rollout buffer: %v",
			err)
	}

	actor, err := model.NewPack("actor", trainPolicy.Network(),
		config.PolicySolver, config.PolicySchedule, c,
		config.ReportFrequency, reporter, logger)
	if err != nil {
		return nil, fmt.Errorf("new: could not create actor model: %v", err)
	}
	critic, err := model.NewPack("critic", trainCritic, config.CriticSolver,
		config.CriticSchedule, c, config.ReportFrequency, reporter, logger)
	if err != nil {
		return nil, fmt.Errorf("new: could not create critic model: %v", err)
	}

	p := &PPO{
		behaviour:       behaviour,
		behaviourCritic: behaviourCritic,
		behaviourStates: behaviourStates,
		behaviourAction: behaviourAction,

		trainPolicy: trainPolicy,
		advantages:  advantages,
		oldLogProbs: oldLogProbs,

		trainCritic:   trainCritic,
		criticStates:  criticStates,
		criticActions: criticActions,
		criticTargets: criticTargets,

		actor:  actor,
		critic: critic,

		buffer: buffer,

		comm:   c,
		config: config,

		features:   features,
		actionDims: actionDims,

		logger: logger.With().Str("system", "ppo").Logger(),
	}

	// Record values of Gorgonia nodes
	G.Read(surrogateLoss, &p.surrogateLossVal)
	G.Read(kl, &p.klVal)
	G.Read(clipFraction, &p.clipFractionVal)
	G.Read(valueLoss, &p.valueLossVal)

	_, err = G.Grad(policyLoss, trainPolicy.Network().Learnables()...)
	if err != nil {
		return nil, fmt.Errorf("new: could not construct policy gradient: %v",
			err)
	}
	p.policyVM = G.NewTapeMachine(
		gPolicy,
		G.BindDualValues(trainPolicy.Network().Learnables()...),
	)

	_, err = G.Grad(scaledValueLoss, trainCritic.Learnables()...)
	if err != nil {
		return nil, fmt.Errorf("new: could not construct critic gradient: %v",
			err)
	}
	p.criticVM = G.NewTapeMachine(
		trainCritic.Graph(),
		G.BindDualValues(trainCritic.Learnables()...),
	)

	p.behaviourVM = G.NewTapeMachine(behaviourCritic.Graph())

	p.logger.Info().
		Int("rank", c.Rank()).
		Int("size", c.Size()).
		Int("features", features).
		Int("actionDims", actionDims).
		Int("bufferCapacity", config.BufferCapacity).
		Int("batchSize", config.BatchSize).
		Msg("created ppo system")

	return p, nil
}

// newCritic returns an action value function MLP predicting from
// state and action input nodes, which are returned with the network.
func newCritic(g *G.ExprGraph, batch, features, actionDims int,
	config Config, init G.InitWFn) (network.NeuralNet, *G.Node, *G.Node,
	error) {
	states := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("Critic States"),
		G.WithShape(batch, features),
		G.WithInit(G.Zeroes()),
	)
	actions := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithName("Critic Actions"),
		G.WithShape(batch, actionDims),
		G.WithInit(G.Zeroes()),
	)

	net, err := network.NewMultiHeadMLPFromInputs(
		[]*G.Node{states, actions},
		1,
		g,
		config.CriticLayers,
		config.CriticBiases,
		init,
		config.CriticActivations,
		"",
		"",
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return net, states, actions, nil
}

// PredictExplore samples an action for the given state from the
// behaviour policy, clipped to the legal action range.
func (p *PPO) PredictExplore(state *mat.VecDense) *mat.VecDense {
	action := p.behaviour.SelectAction(state)
	matutils.VecClip(action, p.config.ALow, p.config.AHigh)
	return action
}

// Predict returns the mean action of the behaviour policy for the
// given state, clipped to the legal action range.
func (p *PPO) Predict(state *mat.VecDense) *mat.VecDense {
	action := p.behaviour.Mean(state)
	matutils.VecClip(action, p.config.ALow, p.config.AHigh)
	return action
}

// Explore returns the argument action unchanged. PPO explores by
// sampling from its stochastic policy in PredictExplore, so no noise
// is added here; the method exists for symmetry with off-policy
// systems that perturb already-computed actions.
func (p *PPO) Explore(action *mat.VecDense) *mat.VecDense {
	return action
}

// Evaluate returns the behaviour critic's action value estimate for
// the given state and action.
func (p *PPO) Evaluate(state, action *mat.VecDense) float64 {
	if state.Len() != p.features {
		panic(fmt.Sprintf("evaluate: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", p.features, state.Len()))
	}
	if action.Len() != p.actionDims {
		panic(fmt.Sprintf("evaluate: invalid action size \n\twant(%v)"+
			"\n\thave(%v)", p.actionDims, action.Len()))
	}

	stateTensor := tensor.NewDense(
		tensor.Float64,
		p.behaviourStates.Shape(),
		tensor.WithBacking(state.RawVector().Data),
	)
	if err := G.Let(p.behaviourStates, stateTensor); err != nil {
		panic(fmt.Sprintf("evaluate: could not set state input: %v", err))
	}
	actionTensor := tensor.NewDense(
		tensor.Float64,
		p.behaviourAction.Shape(),
		tensor.WithBacking(action.RawVector().Data),
	)
	if err := G.Let(p.behaviourAction, actionTensor); err != nil {
		panic(fmt.Sprintf("evaluate: could not set action input: %v", err))
	}

	if err := p.behaviourVM.RunAll(); err != nil {
		panic(fmt.Sprintf("evaluate: could not run behaviour critic: %v",
			err))
	}
	defer p.behaviourVM.Reset()

	value := p.behaviourCritic.Output()[0].Data().([]float64)
	return value[0]
}

// Collect records a single environment transition in the rollout
// buffer, together with the behaviour critic's value estimate for the
// state-action pair and the log probability of the action under the
// behaviour policy. The done flag should be true only when the
// transition ended the episode by reaching a terminal state; episode
// cutoffs such as timeouts should record false so that the rollout
// can still bootstrap from later values.
func (p *PPO) Collect(state, action *mat.VecDense, reward float64,
	done bool) {
	value := p.Evaluate(state, action)
	logProb := p.behaviour.LogProb(state, action)
	p.buffer.Update(state, action, reward, value, logProb, done)
}

// FinalizeRollout computes the generalized advantage estimates and
// λ-returns of the collected rollout. The bootstrap value should be
// the critic's estimate for the state-action pair following the last
// collected transition, and bootstrapDone whether that pair is
// unreachable because the episode terminated.
func (p *PPO) FinalizeRollout(bootstrapValue float64,
	bootstrapDone bool) error {
	if err := p.buffer.Finalize(bootstrapValue, bootstrapDone); err != nil {
		return fmt.Errorf("finalizeRollout: %v", err)
	}
	return nil
}

// Ready returns whether the rollout buffer has accumulated enough
// transitions for TrainStep to sample from it.
func (p *PPO) Ready() bool {
	return p.buffer.Ready()
}

// TrainStep samples a batch from the finalized rollout buffer and
// performs one gradient step on the policy and one on the critic,
// averaging gradients across communicator ranks before applying them.
// After the update, the behaviour networks are set to the training
// networks.
//
// The returned values are the surrogate policy loss and the critic's
// mean squared error on the sampled batch, before the update.
// TrainStep returns an error if the rollout buffer has not been
// filled and finalized.
func (p *PPO) TrainStep() (float64, float64, error) {
	states, actions, _, oldLogProbs, advantages, returns,
		err := p.buffer.Sample(p.config.BatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not sample rollout "+
			"buffer: %v", err)
	}

	if p.config.NormalizeAdvantage && p.config.BatchSize > 1 {
		if err := p.normalizeAdvantages(advantages); err != nil {
			return 0, 0, fmt.Errorf("trainStep: %v", err)
		}
	}

	// Policy gradient step
	if _, err := p.trainPolicy.LogPdfOf(states, actions); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not set policy "+
			"inputs: %v", err)
	}
	advantagesTensor := tensor.NewDense(
		tensor.Float64,
		p.advantages.Shape(),
		tensor.WithBacking(advantages),
	)
	if err := G.Let(p.advantages, advantagesTensor); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not set advantages: %v",
			err)
	}
	oldLogProbsTensor := tensor.NewDense(
		tensor.Float64,
		p.oldLogProbs.Shape(),
		tensor.WithBacking(oldLogProbs),
	)
	if err := G.Let(p.oldLogProbs, oldLogProbsTensor); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not set old log "+
			"probabilities: %v", err)
	}
	if err := p.policyVM.RunAll(); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not run policy "+
			"update: %v", err)
	}

	policyLoss := p.surrogateLossVal.Data().(float64)
	p.klDivergence = p.klVal.Data().(float64)
	p.clipFraction = p.clipFractionVal.Data().(float64)

	if err := p.actor.Step(); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not step actor: %v", err)
	}
	p.policyVM.Reset()

	// Critic gradient step
	statesTensor := tensor.NewDense(
		tensor.Float64,
		p.criticStates.Shape(),
		tensor.WithBacking(states),
	)
	if err := G.Let(p.criticStates, statesTensor); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not set critic "+
			"states: %v", err)
	}
	actionsTensor := tensor.NewDense(
		tensor.Float64,
		p.criticActions.Shape(),
		tensor.WithBacking(actions),
	)
	if err := G.Let(p.criticActions, actionsTensor); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not set critic "+
			"actions: %v", err)
	}
	targetsTensor := tensor.NewDense(
		tensor.Float64,
		p.criticTargets.Shape(),
		tensor.WithBacking(returns),
	)
	if err := G.Let(p.criticTargets, targetsTensor); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not set critic "+
			"targets: %v", err)
	}
	if err := p.criticVM.RunAll(); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not run critic "+
			"update: %v", err)
	}

	valueLoss := p.valueLossVal.Data().(float64)

	if err := p.critic.Step(); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not step critic: %v", err)
	}
	p.criticVM.Reset()

	// Update behaviour policy and behaviour critic
	if err := p.behaviour.Network().Set(p.trainPolicy.Network()); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not update behaviour "+
			"policy: %v", err)
	}
	if err := p.behaviourCritic.Set(p.trainCritic); err != nil {
		return 0, 0, fmt.Errorf("trainStep: could not update behaviour "+
			"critic: %v", err)
	}

	p.actor.Report(map[string]float64{
		"train_loss":    policyLoss,
		"clip_fraction": p.clipFraction,
	})
	p.critic.Report(map[string]float64{"train_loss": valueLoss})

	p.logger.Debug().
		Float64("policyLoss", policyLoss).
		Float64("valueLoss", valueLoss).
		Float64("klDivergence", p.klDivergence).
		Float64("clipFraction", p.clipFraction).
		Msg("train step")

	return policyLoss, valueLoss, nil
}

// normalizeAdvantages normalizes the advantages to have zero mean and
// unit variance across all communicator ranks.
func (p *PPO) normalizeAdvantages(advantages []float64) error {
	mean := []float64{stat.Mean(advantages, nil)}
	if err := p.comm.AllReduce(mean, true); err != nil {
		return fmt.Errorf("normalizeAdvantages: could not average "+
			"means: %v", err)
	}

	squaredDev := 0.0
	for _, advantage := range advantages {
		deviation := advantage - mean[0]
		squaredDev += deviation * deviation
	}
	variance := []float64{squaredDev / float64(len(advantages))}
	if err := p.comm.AllReduce(variance, true); err != nil {
		return fmt.Errorf("normalizeAdvantages: could not average "+
			"variances: %v", err)
	}

	std := math.Sqrt(variance[0])
	for i := range advantages {
		advantages[i] = (advantages[i] - mean[0]) / (std + advantageOffset)
	}
	return nil
}

// KLDivergence returns an estimate of the KL divergence between the
// behaviour and training policies as of the last TrainStep. Callers
// can compare this against TargetKLDivergence to implement early
// stopping of an update epoch.
func (p *PPO) KLDivergence() float64 {
	return p.klDivergence
}

// TargetKLDivergence returns the advisory KL divergence threshold of
// the system's configuration.
func (p *PPO) TargetKLDivergence() float64 {
	return p.config.TargetKLDivergence
}

// ClipFraction returns the fraction of sampled probability ratios
// that were clipped by the surrogate objective on the last TrainStep.
func (p *PPO) ClipFraction() float64 {
	return p.clipFraction
}

// SaveCheckpoint serializes the training policy and critic along with
// their solver and schedule states to the given directory, creating
// it if needed.
func (p *PPO) SaveCheckpoint(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("saveCheckpoint: could not create checkpoint "+
			"directory: %v", err)
	}
	if err := savePack(p.actor, filepath.Join(dir, actorCheckpoint)); err != nil {
		return fmt.Errorf("saveCheckpoint: %v", err)
	}
	if err := savePack(p.critic, filepath.Join(dir, criticCheckpoint)); err != nil {
		return fmt.Errorf("saveCheckpoint: %v", err)
	}
	return nil
}

// LoadCheckpoint restores the training policy and critic from a
// checkpoint directory written by SaveCheckpoint and synchronizes the
// behaviour networks with the restored weights. Solver internal
// state, such as Adam's moment estimates, restarts after a load.
func (p *PPO) LoadCheckpoint(dir string) error {
	if err := loadPack(p.actor, filepath.Join(dir, actorCheckpoint)); err != nil {
		return fmt.Errorf("loadCheckpoint: %v", err)
	}
	if err := loadPack(p.critic, filepath.Join(dir, criticCheckpoint)); err != nil {
		return fmt.Errorf("loadCheckpoint: %v", err)
	}

	if err := p.behaviour.Network().Set(p.trainPolicy.Network()); err != nil {
		return fmt.Errorf("loadCheckpoint: could not update behaviour "+
			"policy: %v", err)
	}
	if err := p.behaviourCritic.Set(p.trainCritic); err != nil {
		return fmt.Errorf("loadCheckpoint: could not update behaviour "+
			"critic: %v", err)
	}
	return nil
}

// savePack gob-encodes a model to the file at path.
func savePack(pack *model.Pack, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create checkpoint file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(pack); err != nil {
		return fmt.Errorf("could not encode %v model: %v", pack.Name(), err)
	}
	return nil
}

// loadPack restores a model from the file at path.
func loadPack(pack *model.Pack, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open checkpoint file: %v", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(pack); err != nil {
		return fmt.Errorf("could not decode %v model: %v", pack.Name(), err)
	}
	return nil
}

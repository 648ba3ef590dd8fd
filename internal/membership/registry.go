package membership

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrShapeExists   = errors.New("membership shape already registered")
	ErrShapeNotFound = errors.New("membership shape not found")
)

// ShapeFactory builds a membership function from its breakpoint parameters.
type ShapeFactory func(params []float64) (Func, error)

var shapeRegistry = struct {
	mu sync.RWMutex
	m  map[string]ShapeFactory
}{
	m: make(map[string]ShapeFactory),
}

func init() {
	initializeBuiltInShapes()
}

func initializeBuiltInShapes() {
	MustRegister("trimf", func(params []float64) (Func, error) {
		if len(params) != 3 {
			return nil, fmt.Errorf("%w: trimf takes 3 parameters, got %d", ErrInvalidParams, len(params))
		}
		return NewTriangular(params[0], params[1], params[2])
	})
	MustRegister("trapmf", func(params []float64) (Func, error) {
		if len(params) != 4 {
			return nil, fmt.Errorf("%w: trapmf takes 4 parameters, got %d", ErrInvalidParams, len(params))
		}
		return NewTrapezoidal(params[0], params[1], params[2], params[3])
	})
}

func Register(name string, factory ShapeFactory) error {
	if name == "" {
		return errors.New("shape name is required")
	}
	if factory == nil {
		return errors.New("shape factory is required")
	}

	shapeRegistry.mu.Lock()
	defer shapeRegistry.mu.Unlock()

	if _, exists := shapeRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrShapeExists, name)
	}
	shapeRegistry.m[name] = factory
	return nil
}

func MustRegister(name string, factory ShapeFactory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// New builds a membership function of the named shape.
func New(shape string, params ...float64) (Func, error) {
	shapeRegistry.mu.RLock()
	factory, ok := shapeRegistry.m[shape]
	shapeRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, shape)
	}
	return factory(params)
}

func ListShapes() []string {
	shapeRegistry.mu.RLock()
	defer shapeRegistry.mu.RUnlock()

	names := make([]string, 0, len(shapeRegistry.m))
	for name := range shapeRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetShapeRegistryForTests() {
	shapeRegistry.mu.Lock()
	shapeRegistry.m = make(map[string]ShapeFactory)
	shapeRegistry.mu.Unlock()
	initializeBuiltInShapes()
}

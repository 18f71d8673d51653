package graph

import (
	"fmt"
	"io"
	"os"
	"unsafe"
)

// Vector files are raw little-endian arrays with no header, one file per
// attribute (first_out, head, weight, latitude, longitude). The element
// count is the file size divided by the element size.

// LoadUint32Vector reads a raw uint32 vector file.
func LoadUint32Vector(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("load %s: size %d is not a multiple of 4", path, len(data))
	}
	n := len(data) / 4
	if n == 0 {
		return []uint32{}, nil
	}
	v := make([]uint32, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), n*4), data)
	return v, nil
}

// LoadFloat32Vector reads a raw float32 vector file.
func LoadFloat32Vector(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("load %s: size %d is not a multiple of 4", path, len(data))
	}
	n := len(data) / 4
	if n == 0 {
		return []float32{}, nil
	}
	v := make([]float32, n)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), n*4), data)
	return v, nil
}

// SaveUint32Vector writes v as a raw uint32 vector file.
func SaveUint32Vector(path string, v []uint32) error {
	return saveVector(path, func(w io.Writer) error { return writeUint32Slice(w, v) })
}

// SaveFloat32Vector writes v as a raw float32 vector file.
func SaveFloat32Vector(path string, v []float32) error {
	return saveVector(path, func(w io.Writer) error {
		if len(v) == 0 {
			return nil
		}
		_, err := w.Write(unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4))
		return err
	})
}

func saveVector(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Float32ToFloat64 widens a coordinate vector.
func Float32ToFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Float64ToFloat32 narrows a coordinate vector for export.
func Float64ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// LoadVectors reads a graph from a directory of vector files named
// first_out, head, weight, latitude and longitude, and validates it.
func LoadVectors(dir string) (*Graph, error) {
	firstOut, err := LoadUint32Vector(dir + "/first_out")
	if err != nil {
		return nil, err
	}
	head, err := LoadUint32Vector(dir + "/head")
	if err != nil {
		return nil, err
	}
	weight, err := LoadUint32Vector(dir + "/weight")
	if err != nil {
		return nil, err
	}
	lat, err := LoadFloat32Vector(dir + "/latitude")
	if err != nil {
		return nil, err
	}
	lon, err := LoadFloat32Vector(dir + "/longitude")
	if err != nil {
		return nil, err
	}

	if err := Validate(firstOut, head); err != nil {
		return nil, err
	}
	numNodes := len(firstOut) - 1
	if len(weight) != len(head) {
		return nil, fmt.Errorf("%w: weight has %d entries, head has %d", ErrInvalidGraph, len(weight), len(head))
	}
	if len(lat) != numNodes || len(lon) != numNodes {
		return nil, fmt.Errorf("%w: coordinate vectors have %d/%d entries, want %d", ErrInvalidGraph, len(lat), len(lon), numNodes)
	}

	return &Graph{
		NumNodes: uint32(numNodes),
		NumEdges: uint32(len(head)),
		FirstOut: firstOut,
		Tail:     InvertFirstOut(firstOut),
		Head:     head,
		Weight:   weight,
		NodeLat:  Float32ToFloat64(lat),
		NodeLon:  Float32ToFloat64(lon),
	}, nil
}

// SaveVectors writes g as a directory of vector files readable by LoadVectors.
func SaveVectors(dir string, g *Graph) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := SaveUint32Vector(dir+"/first_out", g.FirstOut); err != nil {
		return err
	}
	if err := SaveUint32Vector(dir+"/head", g.Head); err != nil {
		return err
	}
	if err := SaveUint32Vector(dir+"/weight", g.Weight); err != nil {
		return err
	}
	if err := SaveFloat32Vector(dir+"/latitude", Float64ToFloat32(g.NodeLat)); err != nil {
		return err
	}
	return SaveFloat32Vector(dir+"/longitude", Float64ToFloat32(g.NodeLon))
}

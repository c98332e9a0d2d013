package pointer

import "github.com/roach88/bamboo/internal/datagram"

// Vec2, Vec3 and Vec4 are opaque float tuples carried by vector arrays.
type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32
)

func readUint16(it *datagram.Iterator) uint16 { return it.Uint16() }
func readUint32(it *datagram.Iterator) uint32 { return it.Uint32() }

func readVec2(it *datagram.Iterator) Vec2 { return Vec2{it.Float32(), it.Float32()} }
func readVec3(it *datagram.Iterator) Vec3 { return Vec3{it.Float32(), it.Float32(), it.Float32()} }
func readVec4(it *datagram.Iterator) Vec4 {
	return Vec4{it.Float32(), it.Float32(), it.Float32(), it.Float32()}
}

func ReadUint16Array(p *Pool, it *datagram.Iterator) ([]uint16, error) {
	return ReadArray(p, it, readUint16)
}

func ReadUint32Array(p *Pool, it *datagram.Iterator) ([]uint32, error) {
	return ReadArray(p, it, readUint32)
}

func ReadVec2Array(p *Pool, it *datagram.Iterator) ([]Vec2, error) {
	return ReadArray(p, it, readVec2)
}

func ReadVec3Array(p *Pool, it *datagram.Iterator) ([]Vec3, error) {
	return ReadArray(p, it, readVec3)
}

func ReadVec4Array(p *Pool, it *datagram.Iterator) ([]Vec4, error) {
	return ReadArray(p, it, readVec4)
}

func WriteUint16Array(wp *WritePool, dg *datagram.Datagram, s []uint16) error {
	return WriteArray(wp, dg, s, (*datagram.Datagram).AddUint16)
}

func WriteUint32Array(wp *WritePool, dg *datagram.Datagram, s []uint32) error {
	return WriteArray(wp, dg, s, (*datagram.Datagram).AddUint32)
}

func WriteVec2Array(wp *WritePool, dg *datagram.Datagram, s []Vec2) error {
	return WriteArray(wp, dg, s, func(dg *datagram.Datagram, v Vec2) { writeFloats(dg, v[:]) })
}

func WriteVec3Array(wp *WritePool, dg *datagram.Datagram, s []Vec3) error {
	return WriteArray(wp, dg, s, func(dg *datagram.Datagram, v Vec3) { writeFloats(dg, v[:]) })
}

func WriteVec4Array(wp *WritePool, dg *datagram.Datagram, s []Vec4) error {
	return WriteArray(wp, dg, s, func(dg *datagram.Datagram, v Vec4) { writeFloats(dg, v[:]) })
}

func writeFloats(dg *datagram.Datagram, fs []float32) {
	for _, f := range fs {
		dg.AddFloat32(f)
	}
}

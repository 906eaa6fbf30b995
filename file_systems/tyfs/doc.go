// Package tyfs implements the TyFS volume layout used by TyDOS boot disks.
//
// A TyFS image is a run of 512-byte sectors laid out as follows. Sector numbers
// are the 1-based sector coordinates the BIOS disk service uses.
//
//	sector 1                           header (first 16 bytes) + boot code
//	sectors 2 .. B                     rest of the boot code and kernel
//	sectors B+1 .. B+D                 directory, E slots of 32 bytes each
//	sectors B+D+1 + M*i .. +M-1        program i, for i in [0, E)
//
// where B is the number of boot sectors, E the number of directory entries, M
// the maximum file size in sectors, and D = ceil(E*32 / 512).
//
// Programs have no size or location fields. Program i always lives in the i-th
// program slot no matter what's in directory slot i, so the directory only maps
// names to slot numbers.
//
// The first byte of a directory slot is nonzero if and only if the slot is in
// use. A used slot holds the program's name, terminated by a null byte unless
// it takes up all 32 bytes.
package tyfs

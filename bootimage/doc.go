// Package bootimage reads, validates and repairs Bouffalo boot images.
//
// # Boot Header Format
//
// A flashable image starts with a fixed 352-byte (0x160) header, all
// multi-byte fields little-endian:
//
//	0x000  magic ("BFNP")                      4 bytes
//	0x004  revision                            4 bytes
//	0x008  flash config: magic ("FCFG"),       92 bytes
//	       84-byte SPI parameter struct, CRC32
//	0x064  clock config: magic ("PCFG"),       28 bytes
//	       20-byte PLL parameter struct, CRC32
//	0x080  basic config: flags, image offset,  48 bytes
//	       AES region length, image length,
//	       SHA-256 digest of the image payload
//	0x0B0  CPU config, 3 cores                 72 bytes
//	0x0F8  boot2 partition table pointers      8 bytes
//	0x100  flash config table pointer/length   8 bytes
//	0x108  patch-on-read entries               32 bytes
//	0x128  patch-on-jump entries               32 bytes
//	0x148  reserved                            20 bytes
//	0x15C  header CRC32 (over bytes 0x000-0x15B)
//
// The image payload follows at the offset named in the basic config block.
//
// A CRC32 or digest field may hold the sentinel value 0xDEADBEEF, meaning
// "not yet computed"; such fields are exactly what Check and Apply exist to
// fill in.
//
// # Checking and Patching
//
// Check walks an image and returns the list of repair operations needed to
// make it self-consistent, or a typed error when the file is fundamentally
// wrong (bad magic, truncated header, offset overflow, non-placeholder
// digest mismatch):
//
//	ops, err := bootimage.Check(f)
//
// Apply writes the repairs back; PatchFile combines both with the
// copy-or-in-place output contract:
//
//	err := bootimage.PatchFile("image.bin", "image-patched.bin")
package bootimage

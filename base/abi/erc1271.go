package abi

// Erc1271MagicValue is what isValidSignature returns for an accepted signature
var Erc1271MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

var ERC1271ABI = mustParse("erc1271", `[
  {
    "type": "function",
    "name": "isValidSignature",
    "stateMutability": "view",
    "inputs": [{"type": "bytes32", "name": "hash"}, {"type": "bytes", "name": "signature"}],
    "outputs": [{"type": "bytes4", "name": "magicValue"}]
  }
]`)

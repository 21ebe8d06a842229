package client

// InteropTokenABI is the contract interface this client speaks: an ERC-20
// token extended with the ERC-7683 settler surface (open/fill/confirm/cancel
// plus the pendingOrders store and the four lifecycle events).
const InteropTokenABI = `[
  {
    "type": "function",
    "name": "balanceOf",
    "stateMutability": "view",
    "inputs": [{"name": "account", "type": "address"}],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "transfer",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "to", "type": "address"},
      {"name": "value", "type": "uint256"}
    ],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "type": "function",
    "name": "open",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "order",
        "type": "tuple",
        "components": [
          {"name": "fillDeadline", "type": "uint32"},
          {"name": "orderDataType", "type": "bytes32"},
          {"name": "orderData", "type": "bytes"}
        ]
      }
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "fill",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "orderId", "type": "bytes32"},
      {"name": "originData", "type": "bytes"},
      {"name": "fillerData", "type": "bytes"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "confirm",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "orderId", "type": "bytes32"}],
    "outputs": []
  },
  {
    "type": "function",
    "name": "cancel",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "orderId", "type": "bytes32"}],
    "outputs": []
  },
  {
    "type": "function",
    "name": "pendingOrders",
    "stateMutability": "view",
    "inputs": [{"name": "", "type": "bytes32"}],
    "outputs": [
      {"name": "from", "type": "address"},
      {
        "name": "orderData",
        "type": "tuple",
        "components": [
          {"name": "recipient", "type": "address"},
          {"name": "amount", "type": "uint256"},
          {"name": "toChain", "type": "uint64"},
          {"name": "feeToken", "type": "address"},
          {"name": "feeValue", "type": "uint256"}
        ]
      }
    ]
  },
  {
    "type": "event",
    "name": "Open",
    "inputs": [
      {"name": "orderId", "type": "bytes32", "indexed": true},
      {
        "name": "resolvedOrder",
        "type": "tuple",
        "indexed": false,
        "components": [
          {"name": "user", "type": "address"},
          {"name": "originChainId", "type": "uint256"},
          {"name": "openDeadline", "type": "uint32"},
          {"name": "fillDeadline", "type": "uint32"},
          {"name": "orderId", "type": "bytes32"},
          {
            "name": "maxSpent",
            "type": "tuple[]",
            "components": [
              {"name": "token", "type": "bytes32"},
              {"name": "amount", "type": "uint256"},
              {"name": "recipient", "type": "bytes32"},
              {"name": "chainId", "type": "uint256"}
            ]
          },
          {
            "name": "minReceived",
            "type": "tuple[]",
            "components": [
              {"name": "token", "type": "bytes32"},
              {"name": "amount", "type": "uint256"},
              {"name": "recipient", "type": "bytes32"},
              {"name": "chainId", "type": "uint256"}
            ]
          },
          {
            "name": "fillInstructions",
            "type": "tuple[]",
            "components": [
              {"name": "destinationChainId", "type": "uint64"},
              {"name": "destinationSettler", "type": "bytes32"},
              {"name": "originData", "type": "bytes"}
            ]
          }
        ]
      }
    ]
  },
  {
    "type": "event",
    "name": "Fill",
    "inputs": [{"name": "orderId", "type": "bytes32", "indexed": true}]
  },
  {
    "type": "event",
    "name": "Confirm",
    "inputs": [{"name": "orderId", "type": "bytes32", "indexed": true}]
  },
  {
    "type": "event",
    "name": "Cancel",
    "inputs": [{"name": "orderId", "type": "bytes32", "indexed": true}]
  }
]`

// OrderDataTypeString is the EIP-712-style type string hashed into
// orderDataType when opening an order.
const OrderDataTypeString = "Order(address,uint256,uint64,address,uint256)"

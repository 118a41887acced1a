// Package dynamodb stores small blobs as items in a DynamoDB table.
//
// Every blob is one item. Many stores can share a table; each one owns a
// namespace.
//
// Table schema:
//   - Partition key: namespace (string)
//   - Sort key: name (string)
//   - Attribute: data (binary)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name jsondata-blobs \
//	  --attribute-definitions AttributeName=namespace,AttributeType=S AttributeName=name,AttributeType=S \
//	  --key-schema AttributeName=namespace,KeyType=HASH AttributeName=name,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// DynamoDB limits an item to 400 KB including attribute names, so the store
// suits record files and small arrays. Larger blobs fail with ErrBlobTooLarge.
package dynamodb

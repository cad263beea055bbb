package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"password",
			"role",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			},

			"password": bson.M{
				"bsonType": "string",
			},

			"role": bson.M{
				"bsonType": "string",
				"enum": []string{
					"employee",
					"manager",
					"admin",
					"superAdmin",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

package validators

import "go.mongodb.org/mongo-driver/bson"

var ProfessionalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"first_name",
			"last_name",
			"email",
			"phone",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			},

			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 5,
				"maxLength": 20,
			},

			"years_of_experience": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  80,
			},

			"skills": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"bio": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"active_for_night_shifts": bson.M{
				"bsonType": "bool",
			},

			"active_days": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
					"enum": []string{
						"Monday",
						"Tuesday",
						"Wednesday",
						"Thursday",
						"Friday",
						"Saturday",
						"Sunday",
					},
				},
			},

			"avatar": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
